// Package secrets reads and writes credentials in the OS keyring, with an
// environment-variable fallback for containerized deployments that have no
// keyring daemon.
package secrets

import (
	"errors"
	"log"
	"strings"

	"github.com/zalando/go-keyring"
)

// Keyring service names. One service per credential keeps rotation and
// revocation independent.
const (
	ServiceTelegramBotToken = "telegram_bot_token"

	ServiceExperianAPIBaseURL   = "experian_api_base_url"
	ServiceExperianClientID     = "experian_client_id"
	ServiceExperianClientSecret = "experian_client_secret"
	ServiceExperianUsername     = "experian_username"
	ServiceExperianPassword     = "experian_password"
)

const keyringAccount = "default_user"

// Get returns the secret stored under the given service name, falling back
// to envKey when the keyring has no entry or is unavailable. An empty string
// means the secret is not configured anywhere.
func Get(service, envKey string, lookupEnv func(string) string) string {
	secret, err := keyring.Get(service, keyringAccount)
	switch {
	case err == nil && secret != "":
		return secret
	case errors.Is(err, keyring.ErrNotFound):
		// Fall through to env.
	case err != nil:
		log.Printf("[secrets] keyring lookup for %s failed: %v", service, err)
	}
	return strings.TrimSpace(lookupEnv(envKey))
}

// Set stores a secret in the keyring under the given service name.
func Set(service, secret string) error {
	return keyring.Set(service, keyringAccount, secret)
}
