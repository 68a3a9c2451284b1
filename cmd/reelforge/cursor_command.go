package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/cursor"
)

func newCursorCommand(cctx *commandContext) *cobra.Command {
	cursorCmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect or reset the product cursor",
	}
	cursorCmd.AddCommand(newCursorShowCommand(cctx))
	cursorCmd.AddCommand(newCursorResetCommand(cctx))
	return cursorCmd
}

func newCursorShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted cursor state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			state := cursor.NewStore(cfg.Paths.StateFile, logger).Load()
			lastRun := "never"
			if state.LastRun != nil {
				lastRun = state.LastRun.Local().Format(time.RFC3339)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State file:  %s\n", cfg.Paths.StateFile)
			fmt.Fprintf(out, "Current row: %d\n", state.CurrentRow)
			fmt.Fprintf(out, "Last run:    %s\n", lastRun)
			return nil
		},
	}
}

func newCursorResetCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Rewind the cursor to the first product",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			if err := cursor.NewStore(cfg.Paths.StateFile, logger).Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cursor reset to row 0")
			return nil
		},
	}
}
