// Command setsecrets copies credentials from the environment (or a .env
// file) into the OS keyring, so the bot can run without secrets in its
// environment.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"creditbot/internal/secrets"
)

var entries = []struct {
	service string
	envKey  string
}{
	{secrets.ServiceTelegramBotToken, "TELEGRAM_BOT_TOKEN"},
	{secrets.ServiceExperianAPIBaseURL, "EXPERIAN_API_BASE_URL"},
	{secrets.ServiceExperianClientID, "EXPERIAN_CLIENT_ID"},
	{secrets.ServiceExperianClientSecret, "EXPERIAN_CLIENT_SECRET"},
	{secrets.ServiceExperianUsername, "EXPERIAN_USERNAME"},
	{secrets.ServiceExperianPassword, "EXPERIAN_PASSWORD"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	stored, skipped := 0, 0
	for _, e := range entries {
		value := strings.TrimSpace(os.Getenv(e.envKey))
		if value == "" {
			log.Printf("skipping %s: %s is not set", e.service, e.envKey)
			skipped++
			continue
		}
		if err := secrets.Set(e.service, value); err != nil {
			log.Fatalf("failed to store %s: %v", e.service, err)
		}
		stored++
	}

	fmt.Printf("Stored %d secret(s) in your system's keyring (%d skipped).\n", stored, skipped)
	if stored > 0 {
		fmt.Println("You can now run the bot without these environment variables.")
	}
}
