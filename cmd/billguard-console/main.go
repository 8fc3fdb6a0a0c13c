package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joelkehle/billguard/internal/billaudit"
	"github.com/joelkehle/billguard/internal/config"
	"github.com/joelkehle/billguard/internal/console"
	"github.com/joelkehle/billguard/internal/logging"
)

func main() {
	var (
		addr       = flag.String("addr", "", "Listen address (overrides the config file)")
		configPath = flag.String("config", config.DefaultPath, "Path to the YAML config file")
		webDir     = flag.String("web-dir", "", "Directory containing web UI files (overrides the config file)")
		chromePath = flag.String("chrome-path", "", "Chromium binary for PDF rendering (overrides the config file)")
		localOnly  = flag.Bool("local-only", false, "Serve without an API key: local pattern checks only, no narrative or chat")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := logging.Setup("", "text")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *webDir != "" {
		cfg.WebDir = *webDir
	}
	if *chromePath != "" {
		cfg.ChromePath = *chromePath
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	web := cfg.WebDir
	if _, err := os.Stat(web); err != nil {
		exe, _ := os.Executable()
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", "web")
		if _, err := os.Stat(candidate); err == nil {
			web = candidate
		}
	}

	var pipeline *billaudit.Pipeline
	if *localOnly {
		logger.Warn().Msg("local-only mode: narrative generation and chat are disabled")
	} else {
		caller, err := billaudit.NewAnthropicCallerFromEnv()
		if err != nil {
			logger.Fatal().Err(err).Msg("set ANTHROPIC_API_KEY or start with -local-only")
		}
		pipeline = billaudit.NewPipeline(caller)
	}

	store := console.NewResultStore(cfg.MaxCachedResults)
	handler := console.NewServer(pipeline, store, web, cfg.Model, cfg.ChromePath, cfg.RequestTimeout(), logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info().Str("addr", cfg.Listen).Str("web_dir", web).Bool("local_only", *localOnly).Msg("console listening")
	srv := &http.Server{Addr: cfg.Listen, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
