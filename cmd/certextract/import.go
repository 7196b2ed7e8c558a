package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import [spreadsheet.xlsx]",
		Short: "Load a consolidated spreadsheet into the format's table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormatFlag(format, true)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			app, err := loadApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.ImportUC.Import(cmd.Context(), f, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Datos ingresados correctamente en %s. (%d filas)\n", res.Table, res.Inserted)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "certificate format of the spreadsheet")
	return cmd
}
