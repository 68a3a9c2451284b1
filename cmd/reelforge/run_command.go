package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"reelforge/internal/pipeline"
	"reelforge/internal/runner"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the next products from the cursor immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			exec, err := buildExecutor(ctx, cfg, logger)
			if err != nil {
				return err
			}

			processCount := cfg.Run.ProductsPerRun
			if count > 0 {
				processCount = count
			}

			summary, runErr := exec.Run(ctx, processCount)
			printSummary(cmd, summary)
			return runErr
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of products to process (overrides run.products_per_run)")
	return cmd
}

func printSummary(cmd *cobra.Command, summary runner.Summary) {
	out := cmd.OutOrStdout()
	if summary.ProductsProcessed == 0 {
		fmt.Fprintln(out, "No products processed")
		return
	}

	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		rows = append(rows, []string{
			strconv.Itoa(result.Row),
			result.Product,
			result.VideoPath,
			publishColumn(result, colorize),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Row", "Product", "Video", "Publishes"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Processed %d product(s)\n", summary.ProductsProcessed)
}

// publishColumn renders per-platform outcomes as "platform:ok" pairs in a
// stable order.
func publishColumn(result pipeline.ProductResult, colorize bool) string {
	if len(result.Publishes) == 0 {
		return "-"
	}
	platforms := make([]string, 0, len(result.Publishes))
	for platform := range result.Publishes {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	parts := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		status := "failed"
		if result.Publishes[platform].Succeeded() {
			status = "ok"
		}
		parts = append(parts, platform+":"+colorizeStatus(status, colorize))
	}
	return strings.Join(parts, " ")
}
