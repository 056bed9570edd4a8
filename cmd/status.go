package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oatsbridge/oatsbridge/internal/config"
	"github.com/oatsbridge/oatsbridge/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show oatsbridge status",
	RunE:  runStatus,
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s oatsbridge Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	fmt.Printf("Config:    %s %s\n", cfgPath, mark(statErr == nil))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:     %s\n", cfg.Agent.Model)
	fmt.Printf("Provider:  %s (key %s)\n", cfg.Provider.APIBase, mark(cfg.Provider.ResolvedAPIKey() != ""))
	fmt.Printf("Portal:    %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Printf("WhatsApp:  %s\n", mark(cfg.Channels.WhatsApp.Enabled))

	dbPath := cfg.DBPath()
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Printf("Database:  %s ✗ (run `oatsbridge seed <file>`)\n", dbPath)
		return nil
	}
	ctx := context.Background()
	db, err := store.Open(ctx, dbPath)
	if err != nil {
		fmt.Printf("Database:  %s ✗ (%v)\n", dbPath, err)
		return nil
	}
	defer db.Close()

	st, err := db.Stats(ctx)
	if err != nil {
		fmt.Printf("Database:  %s ✗ (%v)\n", dbPath, err)
		return nil
	}
	fmt.Printf("Database:  %s ✓\n", dbPath)
	fmt.Printf("  %-15s %d\n", "chat settings", st.ChatSettings)
	fmt.Printf("  %-15s %d\n", "tools", st.Tools)
	fmt.Printf("  %-15s %d\n", "endpoints", st.Endpoints)
	fmt.Printf("  %-15s %d\n", "conversations", st.Conversations)
	fmt.Printf("  %-15s %d\n", "messages", st.Messages)
	return nil
}
