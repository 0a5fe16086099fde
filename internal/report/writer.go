package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/at-ishikawa/littlesteps/internal/assets"
	"github.com/at-ishikawa/littlesteps/internal/pdf"
)

// RenderMarkdown executes the report template at templatePath, or the
// embedded one, against doc.
func RenderMarkdown(output io.Writer, doc Document, templatePath string) error {
	tmpl, err := assets.ParseReportTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("assets.ParseReportTemplate(%s) > %w", templatePath, err)
	}
	if err := tmpl.Execute(output, doc); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}

func ExportPDF(markdownPath string) (string, error) {
	pdfPath, err := pdf.ConvertMarkdownToPDF(markdownPath, pdf.Options{})
	if err != nil {
		return "", fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", markdownPath, err)
	}
	return pdfPath, nil
}

type Writer struct {
	templatePath    string
	outputDirectory string
}

func NewWriter(templatePath, outputDirectory string) *Writer {
	return &Writer{templatePath: templatePath, outputDirectory: outputDirectory}
}

// Write creates <outputDirectory>/<name>.md and, when generatePDF is set,
// the matching PDF. It returns the paths it wrote; pdfPath is empty without a PDF.
func (w *Writer) Write(doc Document, name string, generatePDF bool) (markdownPath, pdfPath string, err error) {
	if err := os.MkdirAll(w.outputDirectory, 0755); err != nil {
		return "", "", fmt.Errorf("os.MkdirAll(%s) > %w", w.outputDirectory, err)
	}

	markdownPath = filepath.Join(w.outputDirectory, name+".md")
	output, err := os.Create(markdownPath)
	if err != nil {
		return "", "", fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
	}
	if err := RenderMarkdown(output, doc, w.templatePath); err != nil {
		_ = output.Close()
		return "", "", err
	}
	if err := output.Close(); err != nil {
		return "", "", fmt.Errorf("output.Close() > %w", err)
	}

	if !generatePDF {
		return markdownPath, "", nil
	}
	pdfPath, err = ExportPDF(markdownPath)
	if err != nil {
		return markdownPath, "", err
	}
	return markdownPath, pdfPath, nil
}
