package secrets_test

import (
	"testing"

	"github.com/zalando/go-keyring"

	"creditbot/internal/secrets"
)

func TestGetPrefersKeyring(t *testing.T) {
	keyring.MockInit()

	if err := secrets.Set(secrets.ServiceExperianClientID, "from-keyring"); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	env := func(string) string { return "from-env" }
	if got := secrets.Get(secrets.ServiceExperianClientID, "EXPERIAN_CLIENT_ID", env); got != "from-keyring" {
		t.Fatalf("unexpected secret: %s", got)
	}
}

func TestGetFallsBackToEnv(t *testing.T) {
	keyring.MockInit()

	env := func(key string) string {
		if key == "EXPERIAN_USERNAME" {
			return "  env-user  "
		}
		return ""
	}
	if got := secrets.Get(secrets.ServiceExperianUsername, "EXPERIAN_USERNAME", env); got != "env-user" {
		t.Fatalf("unexpected secret: %s", got)
	}
}

func TestGetUnconfiguredIsEmpty(t *testing.T) {
	keyring.MockInit()

	env := func(string) string { return "" }
	if got := secrets.Get(secrets.ServiceExperianPassword, "EXPERIAN_PASSWORD", env); got != "" {
		t.Fatalf("expected empty secret, got %s", got)
	}
}
