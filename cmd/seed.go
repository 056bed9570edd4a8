package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oatsbridge/oatsbridge/internal/config"
	"github.com/oatsbridge/oatsbridge/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load endpoints, tools, chat settings and conversations from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func runSeed(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.SeedFile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("✓ Seeded %d endpoints, %d tools, %d chat settings, %d conversations into %s\n",
		n.Endpoints, n.Tools, n.ChatSettings, n.Conversations, cfg.DBPath())
	return nil
}
