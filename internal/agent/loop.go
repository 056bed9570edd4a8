package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oatsbridge/oatsbridge/internal/bus"
	"github.com/oatsbridge/oatsbridge/internal/schema"
	"github.com/oatsbridge/oatsbridge/internal/shared/llmutils"
)

// ConversationStore persists conversations and their text messages.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, c schema.Conversation) (schema.Conversation, bool, error)
	InsertMessage(ctx context.Context, m schema.Message) (schema.Message, error)
}

// Responder produces the reply of one turn.
type Responder interface {
	ProduceResponse(ctx context.Context, conv schema.Conversation, incoming schema.Message) string
}

// AgentLoop is the collaborator side of the orchestrator.
//
// It reads InboundMessages from the bus, stores each one, asks the
// Responder for a reply, stores the reply and publishes it as an
// OutboundMessage. Each inbound message is handled in its own goroutine;
// turns of the same chat run one at a time, in arrival order at the lock.
type AgentLoop struct {
	bus       bus.Bus
	store     ConversationStore
	responder Responder

	// defaultSettingsID is bound to conversations created on first contact.
	defaultSettingsID string

	chats chatLocks
	wg    sync.WaitGroup
}

// NewAgentLoop creates an AgentLoop.
func NewAgentLoop(b bus.Bus, store ConversationStore, responder Responder, defaultSettingsID string) *AgentLoop {
	return &AgentLoop{
		bus:               b,
		store:             store,
		responder:         responder,
		defaultSettingsID: defaultSettingsID,
	}
}

// Run reads from the inbound bus and processes each message in a goroutine.
// Blocks until ctx is cancelled, then waits for in-flight messages.
func (loop *AgentLoop) Run(ctx context.Context) error {
	slog.Info("Agent loop started")

	for {
		select {
		case msg := <-loop.bus.InboundChan():
			loop.wg.Add(1)
			go func() {
				defer loop.wg.Done()
				loop.handleMessage(ctx, msg)
			}()
		case <-ctx.Done():
			slog.Info("Agent loop stopping")
			loop.wg.Wait()
			return ctx.Err()
		}
	}
}

// ProcessDirect handles a message outside the bus (portal, CLI).
// Returns the final text response.
func (loop *AgentLoop) ProcessDirect(ctx context.Context, in schema.Inbound) string {
	unlock := loop.chats.lock(in.ChatID)
	defer unlock()

	slog.Info(
		"Processing message",
		"sender", in.Sender,
		"chat_id", in.ChatID,
		"source", in.Source,
		"content", llmutils.Truncate(in.Content, 80),
	)

	conv, created, err := loop.store.EnsureConversation(ctx, schema.Conversation{
		ChatID:         in.ChatID,
		Name:           in.SenderName,
		IsGroup:        in.IsGroup,
		ChatSettingsID: loop.defaultSettingsID,
		Source:         in.Source,
	})
	if err != nil {
		slog.Error("Failed to load conversation", "chat_id", in.ChatID, "err", err)
		return ErrorReply(err)
	}
	if created {
		slog.Info("New conversation", "chat_id", conv.ChatID, "settings", conv.ChatSettingsID)
	}

	msgType := in.Type
	if msgType == "" {
		msgType = schema.MessageText
	}
	incoming, err := loop.store.InsertMessage(ctx, schema.Message{
		ChatID:     in.ChatID,
		Sender:     in.Sender,
		SenderName: in.SenderName,
		Type:       msgType,
		Content:    in.Content,
		Role:       "user",
	})
	if err != nil {
		slog.Error("Failed to store message", "chat_id", in.ChatID, "err", err)
		return ErrorReply(err)
	}

	final := loop.responder.ProduceResponse(ctx, conv, incoming)

	slog.Info("Response", "chat_id", in.ChatID, "length", len(final))

	if _, err := loop.store.InsertMessage(ctx, schema.Message{
		ChatID:  in.ChatID,
		Type:    schema.MessageText,
		Content: final,
		Role:    "assistant",
	}); err != nil {
		slog.Error("Failed to store reply", "chat_id", in.ChatID, "err", err)
	}
	return final
}

func (loop *AgentLoop) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	final := loop.ProcessDirect(ctx, inboundFromBus(msg))

	out := bus.NewOutboundMessage(msg.Channel(), msg.ChatID(), final)
	out.SetReplyTo(msg.MessageID())
	out.SetMetadata(msg.Metadata())
	loop.bus.PublishOutbound(out)
}

func inboundFromBus(msg bus.InboundMessage) schema.Inbound {
	return schema.Inbound{
		ChatID:     msg.ChatID(),
		MessageID:  msg.MessageID(),
		Sender:     msg.SenderID(),
		SenderName: msg.SenderName(),
		Content:    msg.Content(),
		Type:       schema.MessageText,
		Source:     sourceFor(msg.Channel()),
		IsGroup:    msg.IsGroup(),
	}
}

func sourceFor(ch bus.ChannelType) schema.SourceType {
	if ch == bus.ChannelWhatsApp {
		return schema.SourceWhatsApp
	}
	return schema.SourcePortal
}
