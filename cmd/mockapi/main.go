package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/mockapi"
	"github.com/niksmo/storefront/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()
	cfg.Print()

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))

	api := mockapi.New(
		cfg.MockAPI.JWTSecret,
		mockapi.WithLatency(cfg.MockAPI.Latency),
	)
	server := mockapi.NewHTTPServer(cfg.MockAPI.Addr, api.Handler())

	go server.Run(stop)
	slog.Info("mock api is running", "addr", cfg.MockAPI.Addr)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	server.Close(ctx)
}
