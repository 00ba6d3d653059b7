package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"voicecleaner/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check that required external tools are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)

			if jsonOut {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					status := "ok"
					if !result.Passed {
						status = "MISSING"
					}
					rows = append(rows, []string{result.Name, status, result.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Check", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}

			if preflight.Failed(results) {
				return errors.New("one or more required tools are unavailable")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit check results as JSON")
	return cmd
}
