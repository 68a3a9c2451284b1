package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"reelforge/internal/api"
	"reelforge/internal/catalog/sheets"
	"reelforge/internal/config"
	"reelforge/internal/cursor"
	"reelforge/internal/pipeline"
	"reelforge/internal/publish"
	"reelforge/internal/runner"
	"reelforge/internal/script"
	"reelforge/internal/secrets"
	"reelforge/internal/secrets/gcpsm"
	"reelforge/internal/services"
	"reelforge/internal/video"
)

// newSecretStore selects the credential backend from config.
func newSecretStore(cfg *config.Config) (secrets.Store, error) {
	switch cfg.Secrets.Provider {
	case "gcp":
		token := strings.TrimSpace(os.Getenv("GCP_ACCESS_TOKEN"))
		if token == "" {
			return nil, services.Wrap(services.ErrConfiguration, "bootstrap", "secret store",
				"GCP_ACCESS_TOKEN must be exported when secrets.provider is gcp", nil)
		}
		return gcpsm.NewClient(gcpsm.Config{
			ProjectID:   cfg.Secrets.GCPProjectID,
			BaseURL:     cfg.Secrets.BaseURL,
			AccessToken: token,
		})
	default:
		return secrets.NewEnv(), nil
	}
}

// buildExecutor wires the vendor clients and pipeline for one effective
// configuration. Secrets are resolved up front so a missing credential
// fails the run before any product is touched.
func buildExecutor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*runner.Executor, error) {
	store, err := newSecretStore(cfg)
	if err != nil {
		return nil, err
	}

	sheetsToken, err := store.GetSecret(ctx, secrets.NameSheetsAPIToken)
	if err != nil {
		return nil, err
	}
	source, err := sheets.NewClient(sheets.Config{
		SpreadsheetID: cfg.Sheets.SpreadsheetID,
		BaseURL:       cfg.Sheets.BaseURL,
		APIToken:      sheetsToken,
		Timeout:       time.Duration(cfg.Sheets.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	scriptKey, err := store.GetSecret(ctx, secrets.NameScriptAPIKey)
	if err != nil {
		return nil, err
	}
	scripts, err := script.NewClient(script.Config{
		APIKey:         scriptKey,
		BaseURL:        cfg.Script.BaseURL,
		Model:          cfg.Script.Model,
		Temperature:    cfg.Script.Temperature,
		MaxTokens:      cfg.Script.MaxTokens,
		TimeoutSeconds: cfg.Script.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}

	videoKey, err := store.GetSecret(ctx, secrets.NameVideoAPIKey)
	if err != nil {
		return nil, err
	}
	videos, err := video.NewClient(video.Config{
		APIKey:          videoKey,
		BaseURL:         cfg.Video.BaseURL,
		AvatarID:        cfg.Video.AvatarID,
		VoiceID:         cfg.Video.VoiceID,
		BackgroundColor: cfg.Video.BackgroundColor,
		Width:           cfg.Video.Width,
		Height:          cfg.Video.Height,
		PollInterval:    time.Duration(cfg.Video.PollIntervalSeconds) * time.Second,
		MaxWait:         time.Duration(cfg.Video.MaxWaitSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	publishers, err := buildPublishers(ctx, cfg, store)
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(scripts, videos, source, publishers, cfg.Paths.VideosDir, logger)
	cursorStore := cursor.NewStore(cfg.Paths.StateFile, logger)
	delay := time.Duration(cfg.Run.DelaySeconds) * time.Second
	return runner.New(source, pipe, cursorStore, delay, logger), nil
}

// buildPublishers constructs every enabled platform publisher.
func buildPublishers(ctx context.Context, cfg *config.Config, store secrets.Store) ([]publish.Publisher, error) {
	var out []publish.Publisher

	if cfg.Publish.YouTube.Enabled {
		token, err := store.GetSecret(ctx, secrets.NameYouTubeToken)
		if err != nil {
			return nil, err
		}
		pub, err := publish.NewYouTube(publish.YouTubeConfig{
			AccessToken:   token,
			UploadBaseURL: cfg.Publish.YouTube.UploadBaseURL,
			CategoryID:    cfg.Publish.YouTube.CategoryID,
			PrivacyStatus: cfg.Publish.YouTube.PrivacyStatus,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, pub)
	}

	if cfg.Publish.Instagram.Enabled {
		token, err := store.GetSecret(ctx, secrets.NameInstagramToken)
		if err != nil {
			return nil, err
		}
		accountID, err := store.GetSecret(ctx, secrets.NameInstagramAccountID)
		if err != nil {
			return nil, err
		}
		pub, err := publish.NewInstagram(publish.InstagramConfig{
			AccessToken:        token,
			AccountID:          accountID,
			BaseURL:            cfg.Publish.Instagram.BaseURL,
			ProcessingInterval: time.Duration(cfg.Publish.Instagram.ProcessingPollSeconds) * time.Second,
			ProcessingMaxWait:  time.Duration(cfg.Publish.Instagram.ProcessingMaxWaitSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, pub)
	}

	if cfg.Publish.Pinterest.Enabled {
		token, err := store.GetSecret(ctx, secrets.NamePinterestToken)
		if err != nil {
			return nil, err
		}
		boardID, err := store.GetSecret(ctx, secrets.NamePinterestBoardID)
		if err != nil {
			return nil, err
		}
		pub, err := publish.NewPinterest(publish.PinterestConfig{
			AccessToken: token,
			BoardID:     boardID,
			BaseURL:     cfg.Publish.Pinterest.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, pub)
	}

	if cfg.Publish.Twitter.Enabled {
		token, err := store.GetSecret(ctx, secrets.NameTwitterAccessToken)
		if err != nil {
			return nil, err
		}
		pub, err := publish.NewTwitter(publish.TwitterConfig{
			AccessToken:        token,
			UploadBaseURL:      cfg.Publish.Twitter.UploadBaseURL,
			APIBaseURL:         cfg.Publish.Twitter.APIBaseURL,
			ProcessingInterval: time.Duration(cfg.Publish.Twitter.ProcessingPollSeconds) * time.Second,
			ProcessingMaxWait:  time.Duration(cfg.Publish.Twitter.ProcessingMaxWaitSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, pub)
	}

	return out, nil
}

// newRunFunc adapts buildExecutor for the API server and scheduler.
func newRunFunc(logger *slog.Logger) api.RunFunc {
	return func(ctx context.Context, cfg *config.Config, processCount int) (runner.Summary, error) {
		exec, err := buildExecutor(ctx, cfg, logger)
		if err != nil {
			return runner.Summary{}, err
		}
		return exec.Run(ctx, processCount)
	}
}
