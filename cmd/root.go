// Package cmd implements the oatsbridge CLI using cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🌾"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "oatsbridge",
	Short: logo + " oatsbridge: LLM tool-calling bridge",
	Long:  logo + " oatsbridge answers chat messages with an LLM that can call configured HTTP tools",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(seedCmd)
}

// setupLogging installs a text handler on stderr at the given level.
func setupLogging(level slog.Level) {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}
