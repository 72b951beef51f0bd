package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var sheetsJSON bool

func newSheetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets [input.xlsx]",
		Short: "List the series of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer analyzer.Close()

			names, err := analyzer.SeriesNames()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if sheetsJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(names)
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sheetsJSON, "json", false, "Print names as a JSON array")
	return cmd
}
