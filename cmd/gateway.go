package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oatsbridge/oatsbridge/internal/config"
	"github.com/oatsbridge/oatsbridge/internal/dependency"
)

var (
	gatewayPort    int
	gatewayVerbose bool
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the oatsbridge gateway: channels, portal API and agent loop",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().IntVarP(&gatewayPort, "port", "p", 0, "Portal port (overrides config)")
	gatewayCmd.Flags().BoolVarP(&gatewayVerbose, "verbose", "v", false, "Verbose logging")
}

func runGateway(_ *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if gatewayVerbose {
		level = slog.LevelDebug
	}
	setupLogging(level)

	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if gatewayPort != 0 {
		cfg.Gateway.Port = gatewayPort
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := dependency.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if seed := cfg.Storage.SeedFile; seed != "" {
		if _, err := container.Store().SeedFile(ctx, config.ExpandHome(seed)); err != nil {
			return err
		}
	}
	if container.Provider().Credential() == "" {
		fmt.Printf("Warning: no API key configured; set provider.apiKey in %s or $OPENAI_API_KEY\n", config.ConfigPath())
	}

	fmt.Printf("%s Starting oatsbridge gateway on %s:%d...\n", logo, cfg.Gateway.Host, cfg.Gateway.Port)

	channelMgr := container.Channels()
	if enabled := channelMgr.EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabled, ", "))
	} else {
		fmt.Println("Warning: no channels enabled; only the portal API is served")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return container.AgentLoop().Run(gctx) })
	g.Go(func() error { return channelMgr.StartAll(gctx) })
	g.Go(func() error { return container.Portal().Run(gctx) })
	g.Go(func() error { return container.Reaper().Start(gctx) })

	fmt.Printf("%s Gateway running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
