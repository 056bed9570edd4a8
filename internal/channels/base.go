// Package channels provides chat-platform channel implementations.
package channels

import (
	"log/slog"

	"github.com/oatsbridge/oatsbridge/internal/bus"
)

// Base holds common state and helper methods shared by all channels.
type Base struct {
	channelName bus.ChannelType
	b           bus.Bus
	allowFrom   []string // empty = allow all
}

// NewBase creates a Base with the given channel name, bus, and allowlist.
func NewBase(name bus.ChannelType, b bus.Bus, allowFrom []string) Base {
	return Base{channelName: name, b: b, allowFrom: allowFrom}
}

// IsAllowed checks whether senderID is on the allowlist.
func (b *Base) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	for _, allowed := range b.allowFrom {
		if allowed == senderID {
			return true
		}
	}
	return false
}

// HandleMessage verifies the sender is allowed, then pushes msg to the bus.
func (b *Base) HandleMessage(msg bus.InboundMessage) {
	if !b.IsAllowed(msg.SenderID()) {
		slog.Warn("access denied", "channel", b.channelName, "sender", msg.SenderID())
		return
	}
	b.b.PublishInbound(msg)
}
