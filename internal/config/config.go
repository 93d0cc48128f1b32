package config

import (
	"fmt"
	"os"
	"strings"

	"creditbot/internal/secrets"
	"creditbot/internal/service/scoring"
)

// Config aggregates every setting the process needs.
type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Scoring  scoring.Config
}

// Load assembles configuration from the OS keyring and environment
// variables. Only the bot token is required up front; missing scoring
// credentials surface later as a scoring failure.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	telegram, err := loadTelegramConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Telegram: telegram,
		Scoring:  loadScoringConfig(),
	}, nil
}

// ServerConfig describes the ops HTTP listener.
type ServerConfig struct {
	Addr string
}

// loadServerConfig parses the listen address for the ops endpoints.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" forms directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// TelegramConfig carries the bot credentials.
type TelegramConfig struct {
	BotToken string
}

func loadTelegramConfig() (TelegramConfig, error) {
	token := secrets.Get(secrets.ServiceTelegramBotToken, "TELEGRAM_BOT_TOKEN", os.Getenv)
	if token == "" {
		return TelegramConfig{}, fmt.Errorf("telegram bot token is not configured: store it with setsecrets or set TELEGRAM_BOT_TOKEN")
	}
	return TelegramConfig{BotToken: token}, nil
}

func loadScoringConfig() scoring.Config {
	return scoring.Config{
		BaseURL:      secrets.Get(secrets.ServiceExperianAPIBaseURL, "EXPERIAN_API_BASE_URL", os.Getenv),
		ClientID:     secrets.Get(secrets.ServiceExperianClientID, "EXPERIAN_CLIENT_ID", os.Getenv),
		ClientSecret: secrets.Get(secrets.ServiceExperianClientSecret, "EXPERIAN_CLIENT_SECRET", os.Getenv),
		Username:     secrets.Get(secrets.ServiceExperianUsername, "EXPERIAN_USERNAME", os.Getenv),
		Password:     secrets.Get(secrets.ServiceExperianPassword, "EXPERIAN_PASSWORD", os.Getenv),
	}
}
