package catalog

import (
	"context"
	"time"
)

// Reader is the product source contract the pipeline depends on.
type Reader interface {
	// ListProducts returns the ordered product rows. Row order is stable
	// for the duration of one run; the list may grow or shrink between runs.
	ListProducts(ctx context.Context) ([]ProductRecord, error)
	// MarkProcessed records a completion timestamp against a zero-based
	// row index. Callers treat failures as best-effort bookkeeping.
	MarkProcessed(ctx context.Context, rowIndex int, processedAt time.Time) error
}
