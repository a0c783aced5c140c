package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/stronganchortech/bible-linker/internal/config"
	"github.com/stronganchortech/bible-linker/internal/content"
	"github.com/stronganchortech/bible-linker/internal/logging"
	"github.com/stronganchortech/bible-linker/internal/web"
)

func main() {
	// A .env file in the working directory may set BIBLELINKER_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	configPath := flag.String("config", config.DefaultPath(), "Path to config JSON")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text, json)")
	addr := flag.String("addr", ":8080", "HTTP bind address")
	flag.Parse()

	logger := logging.BuildLogger(*logLevel, *logFormat)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	store, err := content.Open(cfg.Database)
	if err != nil {
		logger.Error("open content store", "path", cfg.Database, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(cfg, store, logger)
	if err := server.ListenAndServe(ctx, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
