// Package services defines the shared error taxonomy for vendor-facing
// clients and the context helpers that thread job correlation through the
// pipeline. Sentinel errors let callers classify failures (configuration,
// missing secret, upstream, timeout) without string matching.
package services
