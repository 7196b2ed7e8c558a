package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [file...]",
		Short: "Print the detected certificate format of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readSourceFiles(args)
			if err != nil {
				return err
			}
			app, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			for _, f := range files {
				format, err := app.Pipeline.Classify(cmd.Context(), f)
				if err != nil {
					fmt.Fprintf(out, "%s\terror: %v\n", f.Name, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", f.Name, format)
			}
			return nil
		},
	}
}
