package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"exchcore/cache"
	"exchcore/config"
	"exchcore/engine"
	"exchcore/observability/logging"
	"exchcore/observability/metrics"
	"exchcore/storage"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(logging.Options{
		Service:    "exchcore",
		Env:        cfg.Logging.Env,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		log.Error("open database", slog.String("dir", cfg.DataDir), slog.Any("error", err))
		os.Exit(1)
	}
	store := storage.NewStore(db, cfg.BatchByteCeiling)
	defer store.Close()

	registry := cache.NewRegistry(store)
	cache.SetDefault(registry)
	metrics.Register(prometheus.DefaultRegisterer)

	dispatcher := engine.NewDispatcher(registry)
	pipeline := engine.NewPipeline(dispatcher, cfg.InboxSize, nil, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("exchange core started", slog.String("data_dir", cfg.DataDir))
	pipeline.Run(ctx)
	log.Info("exchange core stopped")
}
