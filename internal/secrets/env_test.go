package secrets_test

import (
	"context"
	"errors"
	"testing"

	"reelforge/internal/secrets"
	"reelforge/internal/services"
)

func TestEnvResolvesUppercasedName(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	value, err := secrets.NewEnv().GetSecret(context.Background(), secrets.NameScriptAPIKey)
	if err != nil {
		t.Fatalf("GetSecret failed: %v", err)
	}
	if value != "sk-test" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestEnvMissingSecret(t *testing.T) {
	_, err := secrets.NewEnv().GetSecret(context.Background(), "definitely_not_set_anywhere")
	if !errors.Is(err, services.ErrSecretNotFound) {
		t.Fatalf("expected secret-not-found classification, got %v", err)
	}
}

func TestEnvRejectsEmptyName(t *testing.T) {
	if _, err := secrets.NewEnv().GetSecret(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty name")
	}
}
