package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oatsbridge/oatsbridge/internal/schema"
	"github.com/oatsbridge/oatsbridge/internal/shared/llmutils"
	"github.com/oatsbridge/oatsbridge/internal/tools"
	"github.com/oatsbridge/oatsbridge/internal/transcript"
)

// Fixed replies returned to the user when a turn cannot be answered normally.
const (
	SettingsApology = "I'm sorry, I'm having trouble with my settings. Please try again later."
	NoResponseReply = "I've completed processing but have no response to give."
	ToolNotFound    = "Tool not found."
)

// ErrorReply is the text returned when the provider call fails.
func ErrorReply(err error) string {
	return fmt.Sprintf("I'm sorry, I encountered an error: %v", err)
}

var errNoCredential = errors.New("no provider credential configured")

// TurnState is the position of a turn in its exchange with the provider.
type TurnState int

const (
	AwaitingFirstResponse TurnState = iota
	HasToolCalls
	ExecutingTools
	AwaitingSecondResponse
	Done
)

func (s TurnState) String() string {
	switch s {
	case AwaitingFirstResponse:
		return "awaiting_first_response"
	case HasToolCalls:
		return "has_tool_calls"
	case ExecutingTools:
		return "executing_tools"
	case AwaitingSecondResponse:
		return "awaiting_second_response"
	case Done:
		return "done"
	}
	return fmt.Sprintf("TurnState(%d)", int(s))
}

// TranscriptBuilder assembles the provider input of a turn.
type TranscriptBuilder interface {
	Assemble(ctx context.Context, settings schema.ChatSettings, conv schema.Conversation, incoming schema.Message) (schema.Transcript, error)
}

// ToolRunner executes a function tool and returns its result text.
type ToolRunner interface {
	Execute(ctx context.Context, def schema.ToolDefinition, argumentsJSON string) string
}

// OrchestratorDeps are the collaborators of an Orchestrator.
type OrchestratorDeps struct {
	Settings  schema.SettingsSource
	Provider  schema.LLMProvider
	Assembler TranscriptBuilder
	Executor  ToolRunner
	Writer    schema.TranscriptWriter
	Formatter *tools.Formatter
	// Model is used when the chat settings do not name one. The provider's
	// default applies when both are empty.
	Model string
}

// Orchestrator answers one incoming message with at most one tool round trip.
// It holds no per-turn state and is safe for concurrent turns.
type Orchestrator struct {
	settings  schema.SettingsSource
	provider  schema.LLMProvider
	assembler TranscriptBuilder
	executor  ToolRunner
	writer    schema.TranscriptWriter
	formatter *tools.Formatter
	model     string
}

// NewOrchestrator creates an Orchestrator. A nil Formatter gets the default.
func NewOrchestrator(d OrchestratorDeps) *Orchestrator {
	formatter := d.Formatter
	if formatter == nil {
		formatter = tools.NewFormatter(false)
	}
	return &Orchestrator{
		settings:  d.Settings,
		provider:  d.Provider,
		assembler: d.Assembler,
		executor:  d.Executor,
		writer:    d.Writer,
		formatter: formatter,
		model:     d.Model,
	}
}

// turn tracks the state of one ProduceResponse call for logging.
type turn struct {
	chatID string
	state  TurnState
}

func (t *turn) enter(s TurnState) {
	slog.Debug("Turn state", "chat_id", t.chatID, "from", t.state, "to", s)
	t.state = s
}

// ProduceResponse answers incoming in conv. It always returns a reply;
// failures become apology text.
func (o *Orchestrator) ProduceResponse(ctx context.Context, conv schema.Conversation, incoming schema.Message) string {
	t := &turn{chatID: conv.ChatID, state: AwaitingFirstResponse}

	settings, err := o.loadSettings(ctx, conv)
	if err != nil {
		slog.Error("Cannot answer turn", "chat_id", conv.ChatID, "settings", conv.ChatSettingsID, "err", err)
		t.enter(Done)
		return SettingsApology
	}

	batch := o.formatter.Format(settings.Tools)
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		if dump, err := batch.JSON(); err == nil {
			slog.Debug("Provider tools", "chat_id", conv.ChatID, "tools", string(dump))
		}
	}
	input, err := o.assembler.Assemble(ctx, settings, conv, incoming)
	if err != nil {
		slog.Error("Assemble transcript", "chat_id", conv.ChatID, "err", err)
		t.enter(Done)
		return ErrorReply(err)
	}

	req := schema.ResponseRequest{
		Model:      o.modelFor(settings),
		Transcript: input,
		Tools:      batch.Declarations,
	}
	slog.Info("Calling provider", "chat_id", conv.ChatID, "model", req.Model, "tools", batch.Len(), "entries", input.Len())

	resp, err := o.provider.Respond(ctx, req)
	if err != nil {
		slog.Error("Provider call failed", "chat_id", conv.ChatID, "err", err)
		t.enter(Done)
		return ErrorReply(err)
	}
	if !resp.HasToolCalls() {
		t.enter(Done)
		return llmutils.StringOrDefault(resp.Text, NoResponseReply)
	}

	t.enter(HasToolCalls)
	slog.Info("Tool calls requested", "chat_id", conv.ChatID, "calls", llmutils.ToolHint(resp.ToolCalls))

	t.enter(ExecutingTools)
	for _, call := range resp.ToolCalls {
		entry, result := o.runCall(ctx, settings, batch.Names, call)
		o.persist(ctx, conv.ChatID, entry)
		o.persist(ctx, conv.ChatID, result)
		transcript.Append(&req.Transcript, entry, result)
	}

	t.enter(AwaitingSecondResponse)
	final, err := o.provider.Respond(ctx, req)
	if err != nil {
		slog.Error("Provider call failed", "chat_id", conv.ChatID, "err", err)
		t.enter(Done)
		return ErrorReply(err)
	}
	if final.HasToolCalls() {
		slog.Warn("Ignoring tool calls in the follow-up response", "chat_id", conv.ChatID, "count", len(final.ToolCalls))
	}

	t.enter(Done)
	return llmutils.StringOrDefault(final.Text, NoResponseReply)
}

// ListProviderTools returns the declarations the provider would see for
// the given chat settings.
func (o *Orchestrator) ListProviderTools(ctx context.Context, settingsID string) ([]schema.ProviderToolDeclaration, error) {
	settings, err := o.settings.ChatSettings(ctx, settingsID)
	if err != nil {
		return nil, err
	}
	return o.formatter.List(settings), nil
}

func (o *Orchestrator) loadSettings(ctx context.Context, conv schema.Conversation) (schema.ChatSettings, error) {
	if conv.ChatSettingsID == "" {
		return schema.ChatSettings{}, fmt.Errorf("conversation %s has no chat settings: %w", conv.ChatID, schema.ErrNotFound)
	}
	settings, err := o.settings.ChatSettings(ctx, conv.ChatSettingsID)
	if err != nil {
		return schema.ChatSettings{}, err
	}
	if o.provider.Credential() == "" {
		return schema.ChatSettings{}, errNoCredential
	}
	return settings, nil
}

func (o *Orchestrator) modelFor(settings schema.ChatSettings) string {
	switch {
	case settings.Model != "":
		return settings.Model
	case o.model != "":
		return o.model
	default:
		return o.provider.DefaultModel()
	}
}

// runCall resolves one provider call and executes it. Unknown names and
// built-in tools produce the not-found result without any network call.
func (o *Orchestrator) runCall(ctx context.Context, settings schema.ChatSettings, names *tools.NameMap, call schema.ToolCallRequest) (schema.ToolCall, schema.ToolResult) {
	entry := schema.ToolCall{
		ProviderCallID:       call.CallID,
		ProviderObjectID:     call.ObjectID,
		ProviderFunctionName: call.Name,
		ArgumentsJSON:        call.ArgumentsJSON,
	}
	result := schema.ToolResult{ProviderCallID: call.CallID}

	def, ok := o.resolve(settings, names, call.Name)
	if !ok {
		slog.Warn("Tool not found", "name", call.Name, "call_id", call.CallID)
		result.ResultText = ToolNotFound
		return entry, result
	}
	entry.CanonicalToolName = def.ID

	slog.Info("Tool call", "name", call.Name, "tool_id", def.ID, "args", llmutils.Truncate(call.ArgumentsJSON, 200))
	result.ResultText = o.executor.Execute(ctx, def, call.ArgumentsJSON)
	slog.Debug("Tool result", "name", call.Name, "result", llmutils.Truncate(result.ResultText, 200))
	return entry, result
}

func (o *Orchestrator) resolve(settings schema.ChatSettings, names *tools.NameMap, name string) (schema.ToolDefinition, bool) {
	id, ok := names.Resolve(name)
	if !ok {
		return schema.ToolDefinition{}, false
	}
	def, ok := settings.Tool(id)
	if !ok || def.IsBuiltin() {
		return schema.ToolDefinition{}, false
	}
	return def, true
}

func (o *Orchestrator) persist(ctx context.Context, chatID string, e schema.Entry) {
	if o.writer == nil {
		return
	}
	if err := o.writer.AppendEntry(ctx, chatID, e); err != nil {
		slog.Error("Failed to persist transcript entry", "chat_id", chatID, "entry", fmt.Sprintf("%T", e), "err", err)
	}
}
