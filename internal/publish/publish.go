// Package publish defines the per-platform publishing capability and its
// vendor adapters. Each adapter owns its platform's metadata limits; the
// pipeline only sees the Publisher contract and records one Outcome per
// platform.
package publish

import "context"

// Asset references the rendered video both ways publishers need it: some
// upload bytes from a local file, others hand the vendor a public URL.
type Asset struct {
	LocalPath string
	RemoteURL string
}

// Metadata is the platform-agnostic publish copy. Adapters truncate fields
// to their own limits.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
}

// Outcome records a single platform's publish attempt.
type Outcome struct {
	Ref    string `json:"ref,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Success builds an outcome carrying the published URL or media id.
func Success(ref string) Outcome { return Outcome{Ref: ref} }

// Failure builds an outcome carrying the failure reason.
func Failure(reason string) Outcome { return Outcome{Reason: reason} }

// Succeeded reports whether the publish attempt landed.
func (o Outcome) Succeeded() bool { return o.Reason == "" }

// Publisher publishes one video to one platform. Implementations return
// the published URL or id; errors are contained per platform by the caller.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, asset Asset, meta Metadata) (string, error)
}

// truncate limits s to at most limit runes.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
