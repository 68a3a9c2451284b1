package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"reelforge/internal/api"
	"reelforge/internal/jobs"
)

func newServeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the job submission HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			registry, err := jobs.OpenSQLite(jobsDBPath(cfg.Paths.DataDir))
			if err != nil {
				return err
			}
			defer registry.Close()

			server, err := api.NewServer(cfg, registry, newRunFunc(logger), logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			logger.Info("api server shutting down")
			return nil
		},
	}
}

func jobsDBPath(dataDir string) string {
	return filepath.Join(dataDir, "jobs.db")
}
