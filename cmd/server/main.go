package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/specdocx/internal/api"
	"github.com/dgallion1/specdocx/internal/config"
)

func main() {
	boot := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	v, err := config.NewViper(os.Getenv("SPECDOCX_CONFIG"))
	if err != nil {
		boot.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		boot.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stdout)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := api.Run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
