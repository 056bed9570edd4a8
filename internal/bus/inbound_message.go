package bus

import "time"

// InboundMessage is a message received from a chat channel.
type InboundMessage struct {
	channel    ChannelType
	senderID   string // user identifier within the channel
	senderName string
	chatID     string // chat / group identifier
	messageID  string // platform message id, used for de-duplication
	content    string
	isGroup    bool
	timestamp  time.Time
	metadata   map[string]any
}

// NewInboundMessage creates an InboundMessage with the timestamp set to now.
func NewInboundMessage(channel ChannelType, senderID, chatID, content string) InboundMessage {
	return InboundMessage{
		channel:   channel,
		senderID:  senderID,
		chatID:    chatID,
		content:   content,
		timestamp: time.Now(),
	}
}

func (m InboundMessage) Channel() ChannelType     { return m.channel }
func (m InboundMessage) SenderID() string         { return m.senderID }
func (m InboundMessage) SenderName() string       { return m.senderName }
func (m InboundMessage) ChatID() string           { return m.chatID }
func (m InboundMessage) MessageID() string        { return m.messageID }
func (m InboundMessage) Content() string          { return m.content }
func (m InboundMessage) IsGroup() bool            { return m.isGroup }
func (m InboundMessage) Timestamp() time.Time     { return m.timestamp }
func (m InboundMessage) Metadata() map[string]any { return m.metadata }

func (m *InboundMessage) SetSenderName(name string)    { m.senderName = name }
func (m *InboundMessage) SetMessageID(id string)       { m.messageID = id }
func (m *InboundMessage) SetGroup(isGroup bool)        { m.isGroup = isGroup }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// Preview returns a short snippet of the message content for logging.
func (m InboundMessage) Preview() string {
	preview := m.content
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return preview
}
