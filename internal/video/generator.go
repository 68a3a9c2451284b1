// Package video drives avatar video generation: submit a render job,
// poll it to completion within a bounded wait, and download the finished
// file for publishers that upload by bytes.
package video

import (
	"context"

	"reelforge/internal/catalog"
)

// Status is the lifecycle state reported by the generation vendor.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result describes a finished render. Immutable once Status is completed.
type Result struct {
	VideoID  string `json:"video_id"`
	VideoURL string `json:"video_url"`
	Status   Status `json:"status"`
}

// Generator renders one script into a video and materializes it locally.
type Generator interface {
	// Generate blocks until the render completes, fails, or the bounded
	// wait expires. Expiry surfaces as services.ErrTimeout, render failure
	// as services.ErrUpstream.
	Generate(ctx context.Context, script string, product catalog.ProductRecord) (Result, error)
	// Download streams the rendered video to outputPath.
	Download(ctx context.Context, videoURL, outputPath string) error
}
