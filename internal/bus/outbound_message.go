package bus

// OutboundMessage is a response to be sent back through a channel.
type OutboundMessage struct {
	channel  ChannelType
	chatID   string
	content  string
	replyTo  string // original message ID to quote (optional)
	metadata map[string]any
}

func NewOutboundMessage(channel ChannelType, chatID, content string) OutboundMessage {
	return OutboundMessage{
		channel: channel,
		chatID:  chatID,
		content: content,
	}
}

func (m OutboundMessage) Channel() ChannelType     { return m.channel }
func (m OutboundMessage) ChatID() string           { return m.chatID }
func (m OutboundMessage) Content() string          { return m.content }
func (m OutboundMessage) ReplyTo() string          { return m.replyTo }
func (m OutboundMessage) Metadata() map[string]any { return m.metadata }

func (m *OutboundMessage) SetReplyTo(id string)         { m.replyTo = id }
func (m *OutboundMessage) SetMetadata(md map[string]any) { m.metadata = md }
