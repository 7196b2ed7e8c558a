package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/usecase"
)

func newConvertCmd() *cobra.Command {
	var (
		format         string
		output         string
		patterns       bool
		stats          bool
		storageHeaders bool
	)
	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Consolidate certificate PDFs into one spreadsheet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := parseFormatFlag(format, false)
			if err != nil {
				return err
			}
			files, err := readSourceFiles(args)
			if err != nil {
				return err
			}

			app, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			for _, f := range files {
				if err := usecase.ValidateSourceFile(f, app.Config.MaxFileSizeBytes); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			conv, err := app.Converter.Convert(cmd.Context(), domain.ConvertRequest{
				Files:          files,
				ExpectedFormat: expected,
				WantPatterns:   patterns,
				IncludeStats:   stats,
				StorageHeaders: storageHeaders,
			}, func(e domain.ProgressEvent) {
				status := "ok"
				if e.Status == domain.ProgressRejected {
					status = "failed: " + e.Error
				}
				fmt.Fprintf(out, "[%d/%d] %s %s\n", e.Processed, e.Total, e.FileName, status)
			})
			if err != nil {
				return err
			}

			if conv.Spreadsheet == nil {
				return errors.New(conv.Message)
			}
			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			target := filepath.Join(output, conv.FileName)
			if err := os.WriteFile(target, conv.Spreadsheet, 0o644); err != nil {
				return fmt.Errorf("write spreadsheet: %w", err)
			}
			if patterns {
				printPatterns(out, conv.Batch.Successes())
			}
			fmt.Fprintf(out, "%d succeeded, %d failed, wrote %s\n",
				len(conv.Batch.Successes()), len(conv.Batch.Failures()), target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "expected certificate format")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "directory for the spreadsheet")
	cmd.Flags().BoolVar(&patterns, "patterns", false, "print the pattern table of formats that provide one")
	cmd.Flags().BoolVar(&stats, "stats", false, "add the statistics sheet")
	cmd.Flags().BoolVar(&storageHeaders, "storage-headers", false, "use database column names as headers")
	return cmd
}

func printPatterns(w io.Writer, successes []domain.Outcome) {
	for _, o := range successes {
		if len(o.Result.Patterns) == 0 {
			continue
		}
		fmt.Fprintf(w, "patterns %s:\n", o.FileName)
		keys := make([]string, 0, len(o.Result.Patterns))
		for k := range o.Result.Patterns {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s\t%s\n", k, o.Result.Patterns[k])
		}
	}
}
