package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/config"
	"github.com/softloud/sig-vis/pkg/livereload"
	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/render"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	template := flag.String("template", "", "Bundled template name (overrides the configured provider)")
	edgesPath := flag.String("edges", "", "Edge table CSV path (with -nodes, overrides the configured provider)")
	nodesPath := flag.String("nodes", "", "Node table CSV path")
	aggregation := flag.String("aggregation", "", "Aggregation mode: none or by-category")
	layout := flag.String("layout", "", "Layout: force, circular or hierarchical")
	formatName := flag.String("format", "svg", "Output format: svg, dot or json")
	outPath := flag.String("out", "", "Output path, or - for stdout (default diagram.<format>)")
	watch := flag.Duration("watch", 0, "Re-fetch and re-render on this interval, e.g. 30s (0 renders once)")
	publishAddr := flag.String("publish", "", "Broadcast graph events while watching, e.g. tcp://*:5556")
	flag.Parse()

	if (*edgesPath == "") != (*nodesPath == "") {
		fmt.Println("Usage: sigvis [-config sigvis.yaml] [-template research-pipeline | -edges edges.csv -nodes nodes.csv]")
		fmt.Println("              [-aggregation none|by-category] [-layout force|circular|hierarchical]")
		fmt.Println("              [-format svg|dot|json] [-out diagram.svg] [-watch 30s [-publish tcp://*:5556]]")
		fmt.Println()
		fmt.Println("-edges and -nodes select the file provider and must be given together.")
		os.Exit(1)
	}

	// Progress goes to stderr so -out - can stream the artifact on stdout.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	applyOverrides(cfg, *template, *edgesPath, *nodesPath, *aggregation, *layout)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	format, err := render.ParseFormat(*formatName)
	if err != nil {
		logger.Error("invalid format", "format", *formatName, "error", err)
		os.Exit(1)
	}
	out := *outPath
	if out == "" {
		out = "diagram." + format.String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	src, err := cfg.BuildSource(ctx, logging.NewNopLogger())
	if err != nil {
		cancel()
		logger.Error("failed to build data source", "provider", cfg.Dataset.Provider, "error", err)
		os.Exit(1)
	}

	mode, err := assembly.ParseMode(cfg.Dataset.Aggregation)
	if err != nil {
		cancel()
		logger.Error("invalid aggregation mode", "mode", cfg.Dataset.Aggregation, "error", err)
		os.Exit(1)
	}

	logger.Info("assembling graph", "provider", cfg.Dataset.Provider, "mode", mode.String())
	asm, err := assembly.New(ctx, src, assembly.WithMode(mode))
	cancel()
	if err != nil {
		logger.Error("failed to assemble graph", "error", err)
		os.Exit(1)
	}
	logWarnings(asm, logger)

	renderer, err := render.New(asm, renderOptions(cfg)...)
	if err != nil {
		logger.Error("failed to create renderer", "error", err)
		os.Exit(1)
	}

	if err := plotOnce(asm, renderer, format, out, logger); err != nil {
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}

	if *watch <= 0 {
		return
	}
	watchLoop(asm, renderer, format, out, *watch, *publishAddr, logger)
}

// applyOverrides lets flags beat the file and environment layers.
func applyOverrides(cfg *config.Config, template, edgesPath, nodesPath, aggregation, layout string) {
	if template != "" {
		cfg.Dataset.Provider = config.ProviderTemplate
		cfg.Dataset.Template = template
	}
	if edgesPath != "" && nodesPath != "" {
		cfg.Dataset.Provider = config.ProviderFile
		cfg.Dataset.EdgePath = edgesPath
		cfg.Dataset.NodePath = nodesPath
	}
	if aggregation != "" {
		cfg.Dataset.Aggregation = aggregation
	}
	if layout != "" {
		cfg.Render.Layout = layout
	}
}

func renderOptions(cfg *config.Config) []render.Option {
	opts := []render.Option{
		render.WithLayout(cfg.Render.Layout),
		render.WithCanvas(float64(cfg.Render.Width), float64(cfg.Render.Height)),
	}
	if cfg.Render.Seed != 0 {
		opts = append(opts, render.WithSeed(cfg.Render.Seed))
	}
	if cfg.Render.Title != "" {
		opts = append(opts, render.WithTitle(cfg.Render.Title))
	}
	return opts
}

func logWarnings(asm *assembly.Assembler, logger *slog.Logger) {
	for _, w := range asm.Warnings() {
		logger.Warn("assembly warning",
			"kind", w.Kind,
			"table", w.Table,
			"column", w.Column,
			"row", w.Row,
			"message", w.Message,
		)
	}
}

// plotOnce renders the current graph and writes the artifact to the
// output path, or to stdout when the path is "-".
func plotOnce(asm *assembly.Assembler, renderer *render.Renderer, format render.Format, out string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	artifact, err := renderer.Plot(ctx, format)
	if err != nil {
		return err
	}

	if out == "-" {
		if _, err := os.Stdout.Write(artifact.Data); err != nil {
			return err
		}
	} else if err := os.WriteFile(out, artifact.Data, 0644); err != nil {
		return err
	}

	stats := asm.Stats()
	logger.Info("diagram written",
		"out", out,
		"format", format.String(),
		"bytes", len(artifact.Data),
		"vertices", stats.VertexCount,
		"edges", stats.EdgeCount,
		"warnings", stats.Warnings,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// watchLoop re-fetches the source on the given interval, re-renders,
// and broadcasts a rebuild event after each successful cycle. It runs
// until SIGINT or SIGTERM.
func watchLoop(asm *assembly.Assembler, renderer *render.Renderer, format render.Format, out string, interval time.Duration, publishAddr string, logger *slog.Logger) {
	bus := livereload.NewBus()
	defer bus.Shutdown()

	if publishAddr != "" {
		broadcaster, err := startBroadcaster(publishAddr, bus, logger)
		if err != nil {
			logger.Error("failed to start event broadcast", "address", publishAddr, "error", err)
			os.Exit(1)
		}
		if broadcaster != nil {
			defer broadcaster.Stop()
		}
	}

	logger.Info("watching source", "interval", interval.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down watch")
			return
		case <-ticker.C:
			if err := watchCycle(asm, renderer, format, out, bus, logger); err != nil {
				logger.Warn("watch cycle failed", "error", err)
			}
		}
	}
}

func watchCycle(asm *assembly.Assembler, renderer *render.Renderer, format render.Format, out string, bus *livereload.Bus, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := asm.Reload(ctx); err != nil {
		return err
	}
	logWarnings(asm, logger)

	if err := plotOnce(asm, renderer, format, out, logger); err != nil {
		return err
	}

	bus.Publish(livereload.TopicGraph, livereload.Rebuilt(asm.Stats()))
	return nil
}

func startBroadcaster(addr string, bus *livereload.Bus, logger *slog.Logger) (*livereload.Broadcaster, error) {
	factory, err := livereload.NewSocketFactory()
	if err != nil {
		if errors.Is(err, livereload.ErrNoTransport) {
			logger.Warn("event broadcast disabled: no pub/sub transport in this build", "address", addr)
			return nil, nil
		}
		return nil, err
	}

	broadcaster, err := livereload.NewBroadcaster(factory, bus, livereload.BroadcasterConfig{
		Address: addr,
	})
	if err != nil {
		return nil, err
	}
	if err := broadcaster.Start(); err != nil {
		return nil, err
	}

	logger.Info("event broadcast enabled", "address", addr)
	return broadcaster, nil
}
