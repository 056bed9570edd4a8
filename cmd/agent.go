package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oatsbridge/oatsbridge/internal/config"
	"github.com/oatsbridge/oatsbridge/internal/dependency"
	"github.com/oatsbridge/oatsbridge/internal/schema"
	"github.com/oatsbridge/oatsbridge/internal/shared/cmdutils"
)

var (
	agentMessage string
	agentChat    string
	agentSender  string
	agentLogs    bool
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Talk to a conversation from the terminal",
	RunE:  runAgent,
}

func init() {
	agentCmd.Flags().StringVarP(&agentMessage, "message", "m", "", "Send a single message and exit")
	agentCmd.Flags().StringVarP(&agentChat, "chat", "c", "cli:direct", "Conversation chat id")
	agentCmd.Flags().StringVar(&agentSender, "sender", "cli", "Sender id recorded on messages")
	agentCmd.Flags().BoolVar(&agentLogs, "logs", false, "Show runtime logs")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runAgent(_ *cobra.Command, _ []string) error {
	level := slog.LevelError
	if agentLogs {
		level = slog.LevelInfo
	}
	setupLogging(level)

	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := dependency.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	loop := container.AgentLoop()
	if agentMessage != "" {
		return runSingleMessage(ctx, loop, agentMessage)
	}
	return runInteractive(ctx, loop)
}

// runSingleMessage sends one message to the agent and prints the response.
func runSingleMessage(ctx context.Context, loop schema.AgentLooper, content string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	cmdutils.PrintResponse(loop.ProcessDirect(ctx, inboundFor(content)))
	return nil
}

// runInteractive reads lines from stdin and answers each one before prompting
// again.
func runInteractive(ctx context.Context, loop schema.AgentLooper) error {
	fmt.Printf("%s Interactive mode on %s (type 'exit' or Ctrl+C to quit)\n\n", logo, agentChat)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		cmdutils.PrintResponse(loop.ProcessDirect(ctx, inboundFor(line)))
	}
}

func inboundFor(content string) schema.Inbound {
	return schema.Inbound{
		ChatID:  agentChat,
		Sender:  agentSender,
		Content: content,
		Type:    schema.MessageText,
		Source:  schema.SourcePortal,
	}
}
