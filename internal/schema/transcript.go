package schema

// Entry is one element of the ordered input sent to the provider.
// The concrete types below are the only implementations.
type Entry interface {
	entry()
}

// SystemPrompt opens every transcript.
type SystemPrompt struct{ Text string }

// UserText is a message authored by a person.
type UserText struct{ Text string }

// AssistantText is a message authored by the model.
type AssistantText struct{ Text string }

// ToolCall is a function call the provider emitted. The ids are replayed
// exactly as the provider sent them.
type ToolCall struct {
	ProviderCallID       string
	ProviderObjectID     string
	CanonicalToolName    string
	ProviderFunctionName string
	ArgumentsJSON        string
}

// ToolResult is the output of the call sharing ProviderCallID.
type ToolResult struct {
	ProviderCallID string
	ResultText     string
}

func (SystemPrompt) entry()  {}
func (UserText) entry()      {}
func (AssistantText) entry() {}
func (ToolCall) entry()      {}
func (ToolResult) entry()    {}

// Transcript is an append-only list of entries.
type Transcript struct {
	Entries []Entry
}

// NewTranscript returns a Transcript holding a copy of entries.
func NewTranscript(entries ...Entry) Transcript {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return Transcript{Entries: out}
}

// AddUser appends a user message.
func (t *Transcript) AddUser(text string) { t.Entries = append(t.Entries, UserText{Text: text}) }

// AddToolRoundTrip appends a call and its result.
func (t *Transcript) AddToolRoundTrip(call ToolCall, result ToolResult) {
	t.Entries = append(t.Entries, call, result)
}

// Len returns the number of entries.
func (t Transcript) Len() int { return len(t.Entries) }
