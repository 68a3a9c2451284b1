// Package script turns a product row into a spoken-word marketing script
// via a chat-completions API.
package script

import (
	"context"

	"reelforge/internal/catalog"
)

// Generator produces a narration script for one product.
type Generator interface {
	GenerateScript(ctx context.Context, product catalog.ProductRecord) (string, error)
}
