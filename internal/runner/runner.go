// Package runner executes one batch run: walk the product list from the
// persisted cursor, process each product through the pipeline, and advance
// the cursor only after a product fully succeeds.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reelforge/internal/catalog"
	"reelforge/internal/cursor"
	"reelforge/internal/logging"
	"reelforge/internal/pipeline"
)

// Processor is the per-product pipeline contract the executor drives.
type Processor interface {
	ProcessProduct(ctx context.Context, rowIndex int, product catalog.ProductRecord) (pipeline.ProductResult, error)
}

// Summary reports one completed (or partially completed) run.
type Summary struct {
	ProductsProcessed int                      `json:"products_processed"`
	Results           []pipeline.ProductResult `json:"results"`
}

// Executor runs batches of products against the pipeline.
type Executor struct {
	source   catalog.Reader
	pipeline Processor
	cursor   *cursor.Store
	delay    time.Duration
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// New constructs an executor. delay is the pause between consecutive
// products within one run.
func New(source catalog.Reader, proc Processor, store *cursor.Store, delay time.Duration, logger *slog.Logger) *Executor {
	return &Executor{
		source:   source,
		pipeline: proc,
		cursor:   store,
		delay:    delay,
		logger:   logging.WithComponent(logger, "runner"),
		sleep:    sleepContext,
	}
}

// Run processes up to processCount products starting at the persisted
// cursor, wrapping modulo the list length. The cursor advances after each
// success; the first product failure aborts the rest of the run, returning
// the partial summary alongside the error. An empty product list is a
// successful no-op.
func (e *Executor) Run(ctx context.Context, processCount int) (Summary, error) {
	summary := Summary{}
	if processCount <= 0 {
		processCount = 1
	}

	products, err := e.source.ListProducts(ctx)
	if err != nil {
		return summary, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		e.logger.InfoContext(ctx, "no products found, nothing to do")
		return summary, nil
	}

	state := e.cursor.Load()
	row := state.CurrentRow % len(products)

	e.logger.InfoContext(ctx, "run starting",
		logging.Int("products_total", len(products)),
		logging.Int("process_count", processCount),
		logging.Int(logging.FieldRow, row),
	)

	for i := 0; i < processCount; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := e.pipeline.ProcessProduct(ctx, row, products[row])
		if err != nil {
			return summary, fmt.Errorf("process row %d: %w", row, err)
		}
		summary.Results = append(summary.Results, result)
		summary.ProductsProcessed++

		next := (row + 1) % len(products)
		e.cursor.Advance(next)
		row = next

		if i < processCount-1 && e.delay > 0 {
			if err := e.sleep(ctx, e.delay); err != nil {
				return summary, err
			}
		}
	}

	e.logger.InfoContext(ctx, "run complete",
		logging.Int("products_processed", summary.ProductsProcessed))
	return summary, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
