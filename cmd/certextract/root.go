package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/certextract/internal/bootstrap"
	"github.com/kirillkom/certextract/internal/config"
	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/observability/logging"
)

const serviceName = "certextract-cli"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "certextract",
		Short: "Extract vehicle certificate data from PDFs",
		Long: `certextract classifies vehicle certificate PDFs (homologation, technical
review, compulsory insurance and circulation permits), extracts their fields
and consolidates them into spreadsheets.

Configuration is read from the environment and the optional CONFIG_FILE.

Examples:
  certextract classify *.pdf
  certextract convert --format TECH_REVIEW --stats crt/*.pdf
  certextract import --format SOAP seguros.xlsx
  certextract mcp`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newConvertCmd(),
		newClassifyCmd(),
		newImportCmd(),
		newMCPCmd(),
	)
	return root
}

// loadApp builds the engine. Logs go to stderr so stdout stays usable for
// results and the MCP protocol.
func loadApp(ctx context.Context, persistence bool) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.PersistenceEnabled = persistence
	logger := logging.NewWithWriter(os.Stderr, serviceName, cfg.LogLevel, cfg.AppEnv)
	return bootstrap.New(ctx, cfg, serviceName, logger)
}

func readSourceFiles(paths []string) ([]domain.SourceFile, error) {
	files := make([]domain.SourceFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, domain.SourceFile{
			Name:     filepath.Base(p),
			MimeType: "application/pdf",
			Data:     data,
		})
	}
	return files, nil
}

func parseFormatFlag(raw string, required bool) (domain.DocumentFormat, error) {
	if raw == "" {
		if required {
			return "", fmt.Errorf("--format is required")
		}
		return "", nil
	}
	f, ok := domain.ParseFormat(raw)
	if !ok {
		return "", fmt.Errorf("unknown format %q", raw)
	}
	return f, nil
}
