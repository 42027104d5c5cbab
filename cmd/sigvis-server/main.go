package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/config"
	"github.com/softloud/sig-vis/pkg/livereload"
	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/metrics"
	"github.com/softloud/sig-vis/pkg/serve"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	publishAddr := flag.String("publish", "", "Graph event broadcast address, e.g. tcp://*:5556 (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigvis-server: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level))
	logger.Info("Starting sig-vis server",
		logging.String("version", version),
		logging.String("env", cfg.Env),
		logging.String("provider", cfg.Dataset.Provider),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	src, err := cfg.BuildSource(ctx, logger)
	if err != nil {
		logger.Error("Failed to build data source", logging.Error(err))
		os.Exit(1)
	}

	mode, err := assembly.ParseMode(cfg.Dataset.Aggregation)
	if err != nil {
		logger.Error("Invalid aggregation mode",
			logging.String("mode", cfg.Dataset.Aggregation),
			logging.Error(err))
		os.Exit(1)
	}

	registry := metrics.DefaultRegistry()

	buildStart := time.Now()
	asm, err := assembly.New(ctx, src,
		assembly.WithMode(mode),
		assembly.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to assemble graph", logging.Error(err))
		os.Exit(1)
	}
	registry.RecordAssemblyBuild(metrics.TriggerConstruct, metrics.StatusSuccess, time.Since(buildStart))

	stats := asm.Stats()
	logger.Info("Graph assembled",
		logging.Vertices(stats.VertexCount),
		logging.Edges(stats.EdgeCount),
		logging.Int("warnings", stats.Warnings),
		logging.String("mode", stats.Mode.String()),
	)

	bus := livereload.NewBus()
	defer bus.Shutdown()

	if *publishAddr != "" {
		broadcaster, err := startBroadcaster(*publishAddr, bus, logger)
		if err != nil {
			logger.Error("Failed to start event broadcast", logging.Error(err))
			os.Exit(1)
		}
		if broadcaster != nil {
			defer broadcaster.Stop()
		}
	}

	srv := serve.NewServer(asm, src, serve.Options{
		Layout:   cfg.Render.Layout,
		Width:    cfg.Render.Width,
		Height:   cfg.Render.Height,
		Seed:     cfg.Render.Seed,
		Title:    cfg.Render.Title,
		Version:  version,
		Provider: cfg.Dataset.Provider,
		Logger:   logger,
		Registry: registry,
		Bus:      bus,
	})

	logger.Info("Listening", logging.String("addr", cfg.Server.Addr()))
	if err := srv.Start(cfg.Server.Addr(), serve.Timeouts{
		Read:     cfg.Server.ReadTimeout.Std(),
		Write:    cfg.Server.WriteTimeout.Std(),
		Shutdown: cfg.Server.ShutdownTimeout.Std(),
	}); err != nil {
		logger.Error("Server failed", logging.Error(err))
		os.Exit(1)
	}
}

// startBroadcaster wires the event bus to a pub socket. Builds without
// a transport tag log a warning and run without broadcast.
func startBroadcaster(addr string, bus *livereload.Bus, logger logging.Logger) (*livereload.Broadcaster, error) {
	factory, err := livereload.NewSocketFactory()
	if err != nil {
		if errors.Is(err, livereload.ErrNoTransport) {
			logger.Warn("Event broadcast disabled: no pub/sub transport in this build",
				logging.String("address", addr))
			return nil, nil
		}
		return nil, err
	}

	broadcaster, err := livereload.NewBroadcaster(factory, bus, livereload.BroadcasterConfig{
		Address: addr,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	if err := broadcaster.Start(); err != nil {
		return nil, err
	}

	logger.Info("Event broadcast enabled", logging.String("address", addr))
	return broadcaster, nil
}
