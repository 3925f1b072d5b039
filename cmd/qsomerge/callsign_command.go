package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qsomerge/internal/qso"
)

type callsignJSON struct {
	Input      string `json:"input"`
	Identifier string `json:"identifier"`
	Valid      bool   `json:"valid"`
}

func newCallsignCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "callsign <call>...",
		Short:       "Show the identifier used to match each call sign",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]callsignJSON, 0, len(args))
			for _, arg := range args {
				id := qso.NormalizeCallsign(arg)
				entries = append(entries, callsignJSON{Input: arg, Identifier: id, Valid: qso.ValidCallsign(id)})
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, entries)
			}
			for _, entry := range entries {
				if entry.Valid {
					fmt.Fprintf(out, "%s\t%s\n", entry.Input, entry.Identifier)
				} else {
					fmt.Fprintf(out, "%s\t%s\t(not a call sign)\n", entry.Input, entry.Identifier)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}
