package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"creditbot/internal/bot/telegram"
	"creditbot/internal/config"
	"creditbot/internal/handler"
	"creditbot/internal/service/flow"
	"creditbot/internal/service/scoring"
	"creditbot/internal/service/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with keyring and system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	states := state.NewStore()
	scorer := scoring.NewClient(cfg.Scoring)
	if !cfg.Scoring.Complete() {
		log.Println("warning: credit API credentials are incomplete; scoring requests will fail until configured")
	}

	bot, err := telegram.New(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatalf("failed to connect to Telegram: %v", err)
	}

	engine := flow.NewEngine(states, scorer, bot)
	router := handler.NewRouter(states)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- startServer(ctx, cfg.Server, router)
	}()

	log.Println("Bot is running. Send /start to your bot.")
	if err := bot.Run(ctx, engine); err != nil {
		log.Fatalf("bot error: %v", err)
	}

	if err := <-srvErr; err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ops endpoints listening on %s", serverCfg.Addr)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
