package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/config"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/ledger"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/server"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/storage/sqlite"
	"github.com/strichliste-rs/strichliste-rs-sub000/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	logging.Setup()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	engine := ledger.New(store, ledger.Limits{
		Lower: cfg.Limits.Lower,
		Upper: cfg.Limits.Upper,
	})
	if err := engine.Seed(context.Background()); err != nil {
		slog.Error("Failed to seed system accounts", "error", err)
		os.Exit(1)
	}

	handler := server.New(engine).Handler()

	// h2c enables HTTP/2 without TLS; the terminal usually sits on the same
	// LAN as the server.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	slog.Info("Server starting",
		"address", cfg.Server.Addr,
		"limit_lower", cfg.Limits.Lower,
		"limit_upper", cfg.Limits.Upper,
	)
	if err := http.ListenAndServe(cfg.Server.Addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
