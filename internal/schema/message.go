package schema

import "time"

// MessageType is the stored kind of a conversation message.
type MessageType string

const (
	MessageText       MessageType = "TEXT"
	MessageVoice      MessageType = "VOICE"
	MessageImage      MessageType = "IMAGE"
	MessageMedia      MessageType = "MEDIA"
	MessageLocation   MessageType = "LOCATION"
	MessageSystem     MessageType = "SYSTEM"
	MessageToolCall   MessageType = "TOOL_CALL"
	MessageToolResult MessageType = "TOOL_RESULT"
)

// SourceType is where a conversation originates.
type SourceType string

const (
	SourceWhatsApp SourceType = "WHATSAPP"
	SourcePortal   SourceType = "PORTAL"
)

// Message is one stored row of a conversation's history.
//
// Text messages use Content and Role/Sender. Tool calls use ToolCallID,
// ProviderObjectID, FunctionName (the provider-visible name),
// CanonicalToolName and FunctionArguments. Tool results use ToolCallID and
// FunctionResult.
type Message struct {
	ID         string
	ChatID     string
	Sender     string
	SenderName string
	Type       MessageType
	Content    string
	Role       string

	ToolCallID        string
	ProviderObjectID  string
	FunctionName      string
	CanonicalToolName string
	FunctionArguments string
	FunctionResult    string

	CreatedAt time.Time
}

// InferredRole returns the stored role, else "user" for messages with a
// sender, else "assistant".
func (m Message) InferredRole() string {
	switch {
	case m.Role != "":
		return m.Role
	case m.Sender != "":
		return "user"
	default:
		return "assistant"
	}
}

// Conversation is one chat the bridge answers in.
type Conversation struct {
	ChatID         string
	Name           string
	IsGroup        bool
	ChatSettingsID string
	Source         SourceType
}

// ChatSettings is the active configuration of a conversation.
type ChatSettings struct {
	ID           string
	Name         string
	SystemPrompt string
	Model        string
	Tools        []ToolDefinition
}

// Tool returns the settings' tool with the given canonical id.
func (s ChatSettings) Tool(id string) (ToolDefinition, bool) {
	for _, t := range s.Tools {
		if t.ID == id {
			return t, true
		}
	}
	return ToolDefinition{}, false
}
