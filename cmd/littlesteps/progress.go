package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/littlesteps/internal/cli"
	"github.com/at-ishikawa/littlesteps/internal/config"
	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/report"
	"github.com/at-ishikawa/littlesteps/internal/store"
)

func newProgressCommand() *cobra.Command {
	var (
		studentID    string
		markdownPath string
		generatePDF  bool
	)
	command := &cobra.Command{
		Use:   "progress",
		Short: "Show progress of a student, or of the signed-in teacher's class",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			doc, name, err := loadReport(ctx, s, studentID, cli.NewPrinter(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			if markdownPath == "" && !generatePDF {
				return nil
			}

			written, err := writeReport(cfg.Reports, doc, name, markdownPath, generatePDF)
			if err != nil {
				return err
			}
			for _, path := range written {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return nil
		},
	}
	command.Flags().StringVar(&studentID, "student", "", "Student id, defaults to the current user")
	command.Flags().StringVar(&markdownPath, "markdown", "", "Also write the report as markdown to this path")
	command.Flags().BoolVar(&generatePDF, "pdf", false, "Also export the report as PDF")
	return command
}

// loadReport prints the report it builds and returns it as a document.
// Without a student id a current student reports on themselves and a
// current teacher on their class.
func loadReport(ctx context.Context, s *store.Store, studentID string, printer *cli.Printer) (report.Document, string, error) {
	if studentID == "" {
		user, err := currentUser(ctx, s)
		if err != nil {
			return report.Document{}, "", err
		}
		if teacher, ok := user.(*model.Teacher); ok {
			r, err := report.LoadTeacherReport(ctx, s, teacher.ID)
			if err != nil {
				return report.Document{}, "", fmt.Errorf("report.LoadTeacherReport(%s) > %w", teacher.ID, err)
			}
			printer.PrintTeacherReport(r)
			return r.Document(time.Now()), teacher.ID, nil
		}
		studentID = user.UserProfile().ID
	}

	r, err := report.LoadStudentReport(ctx, s, studentID)
	if err != nil {
		return report.Document{}, "", fmt.Errorf("report.LoadStudentReport(%s) > %w", studentID, err)
	}
	printer.PrintStudentReport(r)
	return r.Document(time.Now()), studentID, nil
}

// writeReport writes to markdownPath when given, and otherwise to
// <name>.md in the reports directory.
func writeReport(cfg config.ReportsConfig, doc report.Document, name, markdownPath string, generatePDF bool) ([]string, error) {
	if markdownPath == "" {
		mdPath, pdfPath, err := report.NewWriter(cfg.Template, cfg.OutputDirectory).Write(doc, name, generatePDF)
		if err != nil {
			return nil, fmt.Errorf("report.Write() > %w", err)
		}
		if pdfPath == "" {
			return []string{mdPath}, nil
		}
		return []string{mdPath, pdfPath}, nil
	}

	output, err := os.Create(markdownPath)
	if err != nil {
		return nil, fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
	}
	if err := report.RenderMarkdown(output, doc, cfg.Template); err != nil {
		_ = output.Close()
		return nil, err
	}
	if err := output.Close(); err != nil {
		return nil, fmt.Errorf("output.Close() > %w", err)
	}
	if !generatePDF {
		return []string{markdownPath}, nil
	}
	pdfPath, err := report.ExportPDF(markdownPath)
	if err != nil {
		return nil, err
	}
	return []string{markdownPath, pdfPath}, nil
}
