// Package pipeline processes one product end to end: generate a marketing
// script, render the avatar video, materialize it locally, fan publishing
// out across platforms, and record bookkeeping in the source sheet.
//
// Stage failures before publishing abort the product. Publishing failures
// are contained per platform: a product that published anywhere at all is
// still a success.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"reelforge/internal/catalog"
	"reelforge/internal/logging"
	"reelforge/internal/publish"
	"reelforge/internal/script"
	"reelforge/internal/services"
	"reelforge/internal/video"
)

// Stage names used in logs and context annotation.
const (
	StageScript      = "script"
	StageVideo       = "video"
	StageMaterialize = "materialize"
	StagePublish     = "publish"
	StageBookkeeping = "bookkeeping"
)

// ProductResult summarizes one fully processed product.
type ProductResult struct {
	Row       int                        `json:"row"`
	Product   string                     `json:"product"`
	VideoID   string                     `json:"video_id"`
	VideoURL  string                     `json:"video_url"`
	VideoPath string                     `json:"video_path"`
	Publishes map[string]publish.Outcome `json:"publishes"`
}

// Pipeline wires the stage collaborators together.
type Pipeline struct {
	scripts    script.Generator
	videos     video.Generator
	source     catalog.Reader
	publishers []publish.Publisher
	videosDir  string
	logger     *slog.Logger
	now        func() time.Time
}

// New constructs a pipeline. A nil logger discards output.
func New(scripts script.Generator, videos video.Generator, source catalog.Reader, publishers []publish.Publisher, videosDir string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		scripts:    scripts,
		videos:     videos,
		source:     source,
		publishers: publishers,
		videosDir:  videosDir,
		logger:     logging.WithComponent(logger, "pipeline"),
		now:        time.Now,
	}
}

// ProcessProduct runs every stage for the product at rowIndex. The returned
// error is non-nil only when a pre-publish stage fails; publishing and
// bookkeeping problems are recorded in the result and logged instead.
func (p *Pipeline) ProcessProduct(ctx context.Context, rowIndex int, product catalog.ProductRecord) (ProductResult, error) {
	result := ProductResult{
		Row:       rowIndex,
		Product:   product.Name(),
		Publishes: make(map[string]publish.Outcome, len(p.publishers)),
	}
	baseAttrs := []logging.Attr{
		logging.Int(logging.FieldRow, rowIndex),
		logging.String(logging.FieldProduct, result.Product),
	}
	p.logger.InfoContext(ctx, "processing product", logging.Args(baseAttrs...)...)

	scriptText, err := p.generateScript(ctx, product, baseAttrs)
	if err != nil {
		return result, err
	}

	render, err := p.renderVideo(ctx, scriptText, product, baseAttrs)
	if err != nil {
		return result, err
	}
	result.VideoID = render.VideoID
	result.VideoURL = render.VideoURL

	localPath, err := p.materialize(ctx, render, rowIndex, baseAttrs)
	if err != nil {
		return result, err
	}
	result.VideoPath = localPath

	result.Publishes = p.publishAll(ctx, publish.Asset{LocalPath: localPath, RemoteURL: render.VideoURL}, product, baseAttrs)

	p.markProcessed(ctx, rowIndex, baseAttrs)
	return result, nil
}

func (p *Pipeline) generateScript(ctx context.Context, product catalog.ProductRecord, baseAttrs []logging.Attr) (string, error) {
	ctx = services.WithStage(ctx, StageScript)
	text, err := p.scripts.GenerateScript(ctx, product)
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	p.logger.InfoContext(ctx, "script generated",
		logging.Args(append(baseAttrs, logging.String(logging.FieldStage, StageScript), logging.Int("script_chars", len(text)))...)...)
	return text, nil
}

func (p *Pipeline) renderVideo(ctx context.Context, scriptText string, product catalog.ProductRecord, baseAttrs []logging.Attr) (video.Result, error) {
	ctx = services.WithStage(ctx, StageVideo)
	render, err := p.videos.Generate(ctx, scriptText, product)
	if err != nil {
		return video.Result{}, fmt.Errorf("generate video: %w", err)
	}
	p.logger.InfoContext(ctx, "video rendered",
		logging.Args(append(baseAttrs, logging.String(logging.FieldStage, StageVideo), logging.String("video_id", render.VideoID))...)...)
	return render, nil
}

func (p *Pipeline) materialize(ctx context.Context, render video.Result, rowIndex int, baseAttrs []logging.Attr) (string, error) {
	ctx = services.WithStage(ctx, StageMaterialize)
	localPath := filepath.Join(p.videosDir, fmt.Sprintf("video_%d_%d.mp4", rowIndex, p.now().Unix()))
	if err := p.videos.Download(ctx, render.VideoURL, localPath); err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}
	p.logger.InfoContext(ctx, "video downloaded",
		logging.Args(append(baseAttrs, logging.String(logging.FieldStage, StageMaterialize), logging.String("path", localPath))...)...)
	return localPath, nil
}

// publishAll attempts every configured platform and always returns one
// outcome per publisher. A panicking or failing publisher never takes the
// rest of the fan-out down with it.
func (p *Pipeline) publishAll(ctx context.Context, asset publish.Asset, product catalog.ProductRecord, baseAttrs []logging.Attr) map[string]publish.Outcome {
	ctx = services.WithStage(ctx, StagePublish)
	meta := publish.Metadata{
		Title:       product.Title(),
		Description: product.Description(),
		Tags:        product.Tags(),
	}

	outcomes := make(map[string]publish.Outcome, len(p.publishers))
	for _, pub := range p.publishers {
		outcomes[pub.Name()] = p.publishOne(ctx, pub, asset, meta, baseAttrs)
	}
	return outcomes
}

func (p *Pipeline) publishOne(ctx context.Context, pub publish.Publisher, asset publish.Asset, meta publish.Metadata, baseAttrs []logging.Attr) (outcome publish.Outcome) {
	attrs := append(baseAttrs,
		logging.String(logging.FieldStage, StagePublish),
		logging.String(logging.FieldPlatform, pub.Name()))

	defer func() {
		if r := recover(); r != nil {
			outcome = publish.Failure(fmt.Sprintf("panic: %v", r))
			p.logger.ErrorContext(ctx, "publish panicked",
				logging.Args(append(attrs, logging.Any("panic", r))...)...)
		}
	}()

	ref, err := pub.Publish(ctx, asset, meta)
	if err != nil {
		p.logger.ErrorContext(ctx, "publish failed", logging.Args(append(attrs, logging.Error(err))...)...)
		return publish.Failure(err.Error())
	}
	p.logger.InfoContext(ctx, "published", logging.Args(append(attrs, logging.String("ref", ref))...)...)
	return publish.Success(ref)
}

// markProcessed stamps the source sheet. Best effort: the render and any
// publishes already happened, so a bookkeeping failure only gets logged.
func (p *Pipeline) markProcessed(ctx context.Context, rowIndex int, baseAttrs []logging.Attr) {
	ctx = services.WithStage(ctx, StageBookkeeping)
	if err := p.source.MarkProcessed(ctx, rowIndex, p.now().UTC()); err != nil {
		p.logger.WarnContext(ctx, "mark processed failed",
			logging.Args(append(baseAttrs, logging.String(logging.FieldStage, StageBookkeeping), logging.Error(err))...)...)
	}
}
