package store

import (
	"context"
	"errors"
	"testing"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSeedFile_and_ChatSettings(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	n, err := db.SeedFile(ctx, "testdata/seed.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if n != (SeedCounts{Endpoints: 1, Tools: 3, ChatSettings: 1, Conversations: 1}) {
		t.Errorf("counts: %+v", n)
	}

	s, err := db.ChatSettings(ctx, "default")
	if err != nil {
		t.Fatal(err)
	}
	if s.SystemPrompt != "You are a helpful assistant." || s.Model != "gpt-4o-mini" {
		t.Errorf("settings: %+v", s)
	}
	if len(s.Tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(s.Tools))
	}
	if s.Tools[0].ID != "web" || s.Tools[1].ID != "7c9e6679-7425-40de-944b-e07fc1f90ae7" || s.Tools[2].ID != "clock" {
		t.Errorf("tool order: %s, %s, %s", s.Tools[0].ID, s.Tools[1].ID, s.Tools[2].ID)
	}

	web := s.Tools[0]
	if web.Kind != schema.ToolKindWebSearch || web.FunctionSchema["search_context_size"] != "low" {
		t.Errorf("web tool: %+v", web)
	}

	item := s.Tools[1]
	if item.Kind != schema.ToolKindFunction {
		t.Errorf("kind defaulted to %q", item.Kind)
	}
	if item.Endpoint == nil {
		t.Fatal("endpoint not resolved")
	}
	if item.Endpoint.Method() != "POST" || item.Endpoint.ServerBaseURL() != "https://api.example.com" || item.Endpoint.Path() != "/v1/items" {
		t.Errorf("endpoint: %s %s%s", item.Endpoint.Method(), item.Endpoint.ServerBaseURL(), item.Endpoint.Path())
	}
	if item.Endpoint.Version() != "1" {
		t.Errorf("version: %q", item.Endpoint.Version())
	}
	props, _ := item.Endpoint.RequestBodySchema()["properties"].(map[string]any)
	if _, ok := props["title"]; !ok {
		t.Errorf("request body lost properties: %v", item.Endpoint.RequestBodySchema())
	}
	headers := item.Endpoint.ParametersIn(schema.ParamInHeader)
	if len(headers) != 1 || headers[0].Name != "X-Tenant" || !headers[0].Required {
		t.Errorf("header params: %+v", headers)
	}
	if item.StaticHeaders["X-Api-Key"] != "secret" {
		t.Errorf("static headers: %v", item.StaticHeaders)
	}
	if len(item.SkipParameters) != 1 || item.SkipParameters[0] != "price" {
		t.Errorf("skip: %v", item.SkipParameters)
	}

	clock := s.Tools[2]
	if clock.Endpoint != nil || clock.FunctionSchema["name"] != "current_time" {
		t.Errorf("clock tool: %+v", clock)
	}

	conv, err := db.Conversation(ctx, "portal-demo")
	if err != nil {
		t.Fatal(err)
	}
	if conv.ChatSettingsID != "default" || conv.Source != schema.SourcePortal {
		t.Errorf("conversation: %+v", conv)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		if _, err := db.SeedFile(ctx, "testdata/seed.yaml"); err != nil {
			t.Fatal(err)
		}
	}
	st, err := db.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Tools != 3 || st.Endpoints != 1 || st.ChatSettings != 1 || st.Conversations != 1 {
		t.Errorf("stats after reseed: %+v", st)
	}
}

func TestParseSeed_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":           "endpoints: [",
		"endpoint no id":     "endpoints:\n  - path: /x\n",
		"tool no id":         "tools:\n  - name: t\n",
		"settings no id":     "chatSettings:\n  - name: s\n",
		"conversation no id": "conversations:\n  - name: c\n",
	}
	for name, doc := range cases {
		if _, err := ParseSeed([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestChatSettings_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.ChatSettings(context.Background(), "missing")
	if !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChatSettings_MissingEndpointLeavesToolWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.UpsertTool(ctx, ToolRecord{ID: "t", Name: "t", Kind: "function", EndpointID: "gone"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertChatSettings(ctx, ChatSettingsRecord{ID: "s", Tools: []string{"t"}}); err != nil {
		t.Fatal(err)
	}
	s, err := db.ChatSettings(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Tools) != 1 || s.Tools[0].Endpoint != nil {
		t.Errorf("tools: %+v", s.Tools)
	}
}

func TestInsertMessage_and_RecentMessages(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for _, content := range []string{"one", "two", "three"} {
		if _, err := db.InsertMessage(ctx, schema.Message{ChatID: "c1", Sender: "+1555", Content: content}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.InsertMessage(ctx, schema.Message{ChatID: "other", Content: "elsewhere"}); err != nil {
		t.Fatal(err)
	}

	got, err := db.RecentMessages(ctx, "c1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Content != "three" || got[1].Content != "two" {
		t.Fatalf("recent: %+v", got)
	}
	if got[0].ID == "" || got[0].Type != schema.MessageText || got[0].CreatedAt.IsZero() {
		t.Errorf("defaults not applied: %+v", got[0])
	}
}

func TestAppendEntry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	call := schema.ToolCall{
		ProviderCallID:       "call_1",
		ProviderObjectID:     "fc_1",
		CanonicalToolName:    "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		ProviderFunctionName: "example_v1_items_post",
		ArgumentsJSON:        `{"title":"Lamp"}`,
	}
	if err := db.AppendEntry(ctx, "c1", call); err != nil {
		t.Fatal(err)
	}
	if err := db.AppendEntry(ctx, "c1", schema.ToolResult{ProviderCallID: "call_1", ResultText: "created"}); err != nil {
		t.Fatal(err)
	}
	if err := db.AppendEntry(ctx, "c1", schema.SystemPrompt{Text: "nope"}); err == nil {
		t.Error("expected error for system prompt entry")
	}

	got, err := db.RecentMessages(ctx, "c1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	result, stored := got[0], got[1]
	if stored.Type != schema.MessageToolCall || stored.ToolCallID != "call_1" || stored.ProviderObjectID != "fc_1" ||
		stored.FunctionName != "example_v1_items_post" || stored.CanonicalToolName != call.CanonicalToolName ||
		stored.FunctionArguments != `{"title":"Lamp"}` {
		t.Errorf("tool call row: %+v", stored)
	}
	if result.Type != schema.MessageToolResult || result.ToolCallID != "call_1" || result.FunctionResult != "created" {
		t.Errorf("tool result row: %+v", result)
	}
}

func TestEnsureConversation(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	conv, created, err := db.EnsureConversation(ctx, schema.Conversation{ChatID: "123@s.whatsapp.net", ChatSettingsID: "default"})
	if err != nil {
		t.Fatal(err)
	}
	if !created || conv.Source != schema.SourceWhatsApp || conv.ChatSettingsID != "default" {
		t.Errorf("first ensure: created=%v %+v", created, conv)
	}

	conv, created, err = db.EnsureConversation(ctx, schema.Conversation{ChatID: "123@s.whatsapp.net", ChatSettingsID: "other"})
	if err != nil {
		t.Fatal(err)
	}
	if created || conv.ChatSettingsID != "default" {
		t.Errorf("second ensure must keep the stored row: created=%v %+v", created, conv)
	}

	if _, err := db.Conversation(ctx, "nobody"); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
