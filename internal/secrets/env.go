package secrets

import (
	"context"
	"os"
	"strings"

	"reelforge/internal/services"
)

// Env resolves secrets from environment variables by upper-casing the
// secret name (openai_api_key becomes OPENAI_API_KEY). Intended for local runs
// and tests.
type Env struct{}

// NewEnv constructs the environment-backed store.
func NewEnv() Env { return Env{} }

// GetSecret implements Store.
func (Env) GetSecret(_ context.Context, name string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return "", services.Wrap(services.ErrValidation, "secrets", "get", "secret name required", nil)
	}
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", services.Wrap(services.ErrSecretNotFound, "secrets", "get", name+" (env "+key+")", nil)
	}
	return strings.TrimSpace(value), nil
}
