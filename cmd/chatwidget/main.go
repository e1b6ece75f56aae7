// chatwidget - embeddable website chat widget daemon.
// Serves the widget page and relays visitor messages to the remote chat
// backend webhook, with bounded local history.
//
// Environment variables:
//   CHATWIDGET_CONFIG_JSON - Full config JSON (alternative to config file)
//   CHATWIDGET_CONFIG_PATH - Config file path (default: config.json)
//   CHATWIDGET_LOG_LEVEL   - Log level (default: info)

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sanagustin/chatwidget/pkg/backend"
	"github.com/sanagustin/chatwidget/pkg/config"
	"github.com/sanagustin/chatwidget/pkg/conversation"
	"github.com/sanagustin/chatwidget/pkg/history"
	"github.com/sanagustin/chatwidget/pkg/logger"
	"github.com/sanagustin/chatwidget/pkg/widget"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatwidget: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	configPath := os.Getenv("CHATWIDGET_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Backend.Endpoint == "" {
		return fmt.Errorf("backend endpoint is required")
	}

	kv, closeKV, err := openKV(cfg)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer closeKV()

	store := history.NewStore(kv, cfg.History.MaxMessages)
	client := backend.NewClient(cfg.Backend.Endpoint, cfg.Backend.Timeout())

	ctrl, err := conversation.NewController(client, store, conversation.Options{
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay(),
		NoticeDuration: cfg.Retry.NoticeDuration(),
	})
	if err != nil {
		return fmt.Errorf("initializing controller: %w", err)
	}

	logger.InfoCF("main", "Chat widget initialized", map[string]interface{}{
		"endpoint":   cfg.Backend.Endpoint,
		"driver":     cfg.History.Driver,
		"visitor_id": ctrl.VisitorID(),
	})

	srv := widget.NewServer(cfg.Widget, ctrl)
	if err := srv.Start(context.Background()); err != nil {
		return fmt.Errorf("starting widget server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.InfoCF("main", "Shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func openKV(cfg *config.Config) (history.KV, func(), error) {
	switch cfg.History.Driver {
	case "sqlite":
		kv, err := history.NewSQLiteKV(cfg.HistoryPath())
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil
	case "", "file":
		kv, err := history.NewFileKV(cfg.HistoryPath())
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown history driver %q", cfg.History.Driver)
	}
}
