package main

import (
	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/certextract/internal/adapters/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the classify and extract tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			srv, err := mcpadapter.NewServer("certextract", version, app.Pipeline, app.Config.MaxFileSizeBytes, app.Logger)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}
}
