package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ytaudio/config"
	"ytaudio/internal/logger"
	"ytaudio/tools"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Step 1: Load configuration (CLI flags > env > config file > defaults)
	cfg, err := config.LoadConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		return 1
	}

	if cfg.ShowVersion {
		fmt.Printf("ytaudio %s\n", version)
		return 0
	}

	if cfg.SaveConfig != "" {
		if err := config.SaveConfigFile(cfg, cfg.SaveConfig); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 1
		}
		fmt.Printf("✓ Configuration saved to %s\n", cfg.SaveConfig)
		return 0
	}

	// Step 2: Logger, tagged with a per-run id
	base, err := logger.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logger error: %v\n", err)
		return 1
	}
	defer base.Sync()
	log, runID := logger.WithRunID(base)

	for _, warning := range cfg.Warnings {
		log.Warn(warning)
	}
	log.Debug("starting", zap.String("version", version), zap.String("run_id", runID), zap.String("config_file", cfg.ConfigFile))

	// Step 3: Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Step 4: Register signal handlers (Ctrl+C, SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\n\n⚠️  Interrupt received, cleaning up...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Step 5: Locate external programs once, before any work starts
	tc, err := tools.Resolve(ctx, cfg.ToolRequirements(), cfg.ToolPaths(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	p := newPipeline(cfg, tc, log, os.Stdout)

	// Step 6: Handle dry-run mode
	if cfg.DryRun {
		if err := p.dryRun(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Dry run failed: %v\n", err)
			return 1
		}
		return 0
	}

	// Step 7: Run the pipeline
	report, err := p.run(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Println("\n⚠️  Cancelled by user")
			p.printLeftovers(report)
			return 130 // Standard exit code for SIGINT
		}
		fmt.Fprintf(os.Stderr, "\n❌ Pipeline error: %v\n", err)
		p.printLeftovers(report)
		return 1
	}

	p.printSummary(report)
	return 0
}
