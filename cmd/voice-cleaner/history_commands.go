package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voicecleaner/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past clean runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

// withHistory opens the store for one subcommand invocation and closes it
// afterwards. It fails when history recording is disabled in the config.
func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("job history is disabled; enable [history] in the configuration")
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded clean runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				jobs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, jobs)
				}

				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No clean runs recorded yet.")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						shortID(job.ID),
						string(job.Status),
						filepath.Base(job.InputPath),
						filepath.Base(job.OutputPath),
						strconv.FormatFloat(job.TargetI, 'f', 1, 64),
						formatBytes(job.OutputBytes),
						job.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Input", "Output", "Target I", "Size", "When"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show the details of one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				job, err := findJob(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, job)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job %s (%s)\n", job.ID, job.Status)
				fmt.Fprintf(out, "  Input: %s\n", job.InputPath)
				fmt.Fprintf(out, "  Output: %s\n", job.OutputPath)
				fmt.Fprintf(out, "  Target: %.1f LUFS at %s\n", job.TargetI, job.Bitrate)
				if job.InputI != "" {
					fmt.Fprintf(out, "  Measured: I=%s LUFS, TP=%s dBTP, LRA=%s LU (offset %s)\n",
						job.InputI, job.InputTP, job.InputLRA, job.TargetOffset)
				}
				if job.Status == history.StatusCompleted {
					fmt.Fprintf(out, "  Size: %s -> %s\n", formatBytes(job.InputBytes), formatBytes(job.OutputBytes))
					fmt.Fprintf(out, "  Took: %s\n", (time.Duration(job.DurationSeconds*float64(time.Second))).Round(100*time.Millisecond))
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error: %s\n", job.ErrorMessage)
				}
				fmt.Fprintf(out, "  Started: %s\n", job.CreatedAt.Local().Format(time.RFC1123))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d recorded run(s)\n", removed)
				return nil
			})
		},
	}
}

// findJob resolves an exact or abbreviated job ID.
func findJob(ctx context.Context, store *history.Store, id string) (*history.Job, error) {
	job, err := store.GetJob(ctx, id)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, history.ErrNotFound) {
		return nil, err
	}

	jobs, listErr := store.List(ctx, 0)
	if listErr != nil {
		return nil, listErr
	}
	var match *history.Job
	for i := range jobs {
		if strings.HasPrefix(jobs[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("job ID %q is ambiguous", id)
			}
			match = &jobs[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no recorded run with ID %q", id)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
