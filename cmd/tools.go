package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oatsbridge/oatsbridge/internal/config"
	"github.com/oatsbridge/oatsbridge/internal/dependency"
	"github.com/oatsbridge/oatsbridge/internal/shared/cmdutils"
)

var toolsSettingsID string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect configured tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the tool declarations sent to the provider for a chat settings record",
	RunE:  runToolsList,
}

func init() {
	toolsListCmd.Flags().StringVarP(&toolsSettingsID, "settings", "s", "", "Chat settings id (default: agent.defaultChatSettingsId)")
	toolsCmd.AddCommand(toolsListCmd)
}

func runToolsList(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	id := toolsSettingsID
	if id == "" {
		id = cfg.Agent.DefaultChatSettingsID
	}

	ctx := context.Background()
	container, err := dependency.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	decls, err := container.Orchestrator().ListProviderTools(ctx, id)
	if err != nil {
		return fmt.Errorf("list tools of %s: %w", id, err)
	}
	if decls == nil {
		return cmdutils.PrintJSON(os.Stdout, []any{})
	}
	return cmdutils.PrintJSON(os.Stdout, decls)
}
