package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks missing or invalid configuration. Fatal at
	// startup or job submission.
	ErrConfiguration = errors.New("configuration error")
	// ErrSecretNotFound marks a credential absent from the secret store.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrUpstream marks a vendor API failure. The wrapped detail carries
	// the vendor response when one was received.
	ErrUpstream = errors.New("upstream request error")
	// ErrTimeout marks a bounded wait that expired, distinct from a
	// generic upstream failure.
	ErrTimeout = errors.New("timeout")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup miss.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
