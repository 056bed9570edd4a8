package schema

import "context"

// AgentLooper is the collaborator-facing side of the agent: it stores the
// inbound message, produces a reply and stores the reply.
type AgentLooper interface {
	// ProcessDirect answers one message outside the bus (portal, CLI).
	ProcessDirect(ctx context.Context, in Inbound) string
	// Run consumes the inbound bus until ctx is cancelled.
	Run(ctx context.Context) error
}

// Inbound is a message arriving from any surface.
type Inbound struct {
	ChatID     string
	MessageID  string
	Sender     string
	SenderName string
	Content    string
	Type       MessageType
	Source     SourceType
	IsGroup    bool
}
