package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/jobs"
)

func newJobsCommand(cctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect submitted pipeline jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(cctx))
	jobsCmd.AddCommand(newJobsShowCommand(cctx))
	return jobsCmd
}

func withRegistry(cctx *commandContext, fn func(*jobs.SQLiteRegistry) error) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	registry, err := jobs.OpenSQLite(jobsDBPath(cfg.Paths.DataDir))
	if err != nil {
		return err
	}
	defer registry.Close()
	return fn(registry)
}

func newJobsListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cctx, func(registry *jobs.SQLiteRegistry) error {
				list, err := registry.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No jobs recorded")
					return nil
				}

				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(list))
				for _, job := range list {
					completed := "-"
					if job.CompletedAt != nil {
						completed = job.CompletedAt.Local().Format(time.RFC3339)
					}
					rows = append(rows, []string{
						job.ID,
						job.ProfileID,
						colorizeStatus(string(job.Status), colorize),
						job.CreatedAt.Local().Format(time.RFC3339),
						completed,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Job", "Profile", "Status", "Created", "Completed"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
}

func newJobsShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cctx, func(registry *jobs.SQLiteRegistry) error {
				job, err := registry.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				encoded, err := json.MarshalIndent(job, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			})
		},
	}
}
