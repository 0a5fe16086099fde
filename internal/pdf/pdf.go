// Package pdf renders markdown reports as PDF files.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
)

type Options struct {
	Landscape bool
	Dark      bool
}

func (o Options) orientation() string {
	if o.Landscape {
		return "L"
	}
	return "P"
}

func (o Options) theme() mdtopdf.Theme {
	if o.Dark {
		return mdtopdf.DARK
	}
	return mdtopdf.LIGHT
}

// ConvertMarkdownToPDF writes <name>.pdf next to the markdown file and
// returns its absolute path.
func ConvertMarkdownToPDF(markdownPath string, opts Options) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer(opts.orientation(), "A4", pdfPath, "", nil, opts.theme())
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}
