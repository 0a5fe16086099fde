package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMarkdownToPDF(t *testing.T) {
	tests := []struct {
		name         string
		markdownPath string
		setupFile    func(t *testing.T) string
		opts         Options
		wantErrMsg   string
	}{
		{
			name:         "invalid extension",
			markdownPath: "report.txt",
			wantErrMsg:   "input file must have .md extension",
		},
		{
			name:         "file not found",
			markdownPath: "nonexistent.md",
			wantErrMsg:   "os.ReadFile",
		},
		{
			name:      "portrait report",
			setupFile: writeMarkdown,
		},
		{
			name:      "landscape dark report",
			setupFile: writeMarkdown,
			opts:      Options{Landscape: true, Dark: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mdPath := tt.markdownPath
			if tt.setupFile != nil {
				mdPath = tt.setupFile(t)
			}

			pdfPath, err := ConvertMarkdownToPDF(mdPath, tt.opts)
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}

			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(pdfPath))
			assert.Equal(t, ".pdf", filepath.Ext(pdfPath))
			_, err = os.Stat(pdfPath)
			assert.NoError(t, err, "PDF file should be created")
		})
	}
}

func writeMarkdown(t *testing.T) string {
	t.Helper()
	mdPath := filepath.Join(t.TempDir(), "student_1.md")
	content := []byte("# Progress of Alex Thompson\n\n| Category | Videos |\n|---|---|\n| Eat | 33% |\n")
	require.NoError(t, os.WriteFile(mdPath, content, 0644))
	return mdPath
}
