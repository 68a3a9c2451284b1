package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/ads"
	"reelforge/internal/config"
	"reelforge/internal/secrets"
)

func newAdsCommand(cctx *commandContext) *cobra.Command {
	adsCmd := &cobra.Command{
		Use:   "ads",
		Short: "Amazon Advertising campaign reports",
	}
	adsCmd.AddCommand(newAdsReportCommand(cctx))
	return adsCmd
}

func newAdsReportCommand(cctx *commandContext) *cobra.Command {
	var reportType string
	var daysBack int
	var outputPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch a campaign performance report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			client, err := buildAdsClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			days := cfg.Ads.DaysBack
			if daysBack > 0 {
				days = daysBack
			}
			kind := cfg.Ads.ReportType
			if strings.TrimSpace(reportType) != "" {
				kind = strings.TrimSpace(reportType)
			}

			start, end := ads.DateRange(time.Now(), days)
			report, err := client.FetchReport(cmd.Context(), ads.ReportRequest{
				StartDate:  start,
				EndDate:    end,
				ReportType: kind,
			})
			if err != nil {
				return err
			}

			if strings.TrimSpace(outputPath) != "" {
				if err := os.WriteFile(outputPath, report, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s report (%s to %s) to %s\n", kind, start, end, outputPath)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&reportType, "type", "t", "", "Report type (overrides ads.report_type)")
	cmd.Flags().IntVarP(&daysBack, "days", "d", 0, "Days to look back (overrides ads.days_back)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

func buildAdsClient(ctx context.Context, cfg *config.Config) (*ads.Client, error) {
	store, err := newSecretStore(cfg)
	if err != nil {
		return nil, err
	}
	token, err := store.GetSecret(ctx, secrets.NameAmazonAccessToken)
	if err != nil {
		return nil, err
	}
	clientID, err := store.GetSecret(ctx, secrets.NameAmazonClientID)
	if err != nil {
		return nil, err
	}
	return ads.NewClient(ads.Config{
		AccessToken:  token,
		ClientID:     clientID,
		BaseURL:      cfg.Ads.BaseURL,
		PollInterval: time.Duration(cfg.Ads.PollIntervalSeconds) * time.Second,
		MaxWait:      time.Duration(cfg.Ads.MaxWaitSeconds) * time.Second,
	})
}
