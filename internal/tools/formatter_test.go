package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

const itemsToolID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func itemsEndpoint() *schema.EndpointSpec {
	ep := schema.NewEndpointSpec(schema.EndpointParams{
		ID:          "ep-items",
		Method:      "POST",
		ServerURL:   "https://api.example.com",
		Path:        "/v1/items",
		Description: "Create an item",
		RequestBody: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":    map[string]any{"type": "string"},
				"price":    map[string]any{"type": "number"},
				"internal": map[string]any{"type": "string"},
			},
			"required": []any{"title", "internal"},
		},
		Parameters: []schema.Parameter{
			{Name: "dry_run", In: schema.ParamInQuery},
			{Name: "X-Tenant", In: schema.ParamInHeader, Required: true},
			{Name: "X-Api-Key", In: schema.ParamInHeader, Required: true},
		},
	})
	return &ep
}

func itemsTool() schema.ToolDefinition {
	return schema.ToolDefinition{
		ID:             itemsToolID,
		Name:           "create item",
		Kind:           schema.ToolKindFunction,
		Endpoint:       itemsEndpoint(),
		SkipParameters: []string{"internal"},
		StaticHeaders:  map[string]string{"x-api-key": "secret"},
	}
}

func TestFormat_BuiltIns(t *testing.T) {
	f := NewFormatter(false)
	batch := f.Format([]schema.ToolDefinition{
		{ID: "w", Kind: schema.ToolKindWebSearch, FunctionSchema: map[string]any{
			"search_context_size": "low",
			"user_location":       map[string]any{"type": "approximate", "country": "US"},
			"unrelated":           true,
		}},
		{ID: "f", Kind: schema.ToolKindFileSearch},
	})

	require.Len(t, batch.Declarations, 2)
	assert.Equal(t, map[string]any{
		"type":                "web_search",
		"search_context_size": "low",
		"user_location":       map[string]any{"type": "approximate", "country": "US"},
	}, batch.Declarations[0].WireMap())
	assert.Equal(t, map[string]any{"type": "file_search"}, batch.Declarations[1].WireMap())
	assert.Zero(t, batch.Names.Len())
}

func TestFormat_EndpointTool(t *testing.T) {
	batch := NewFormatter(false).Format([]schema.ToolDefinition{itemsTool()})
	require.Len(t, batch.Declarations, 1)

	decl := batch.Declarations[0]
	assert.Equal(t, "function", decl.Type)
	assert.Equal(t, "example_v1_items_post", decl.Name)
	assert.Equal(t, "Create an item", decl.Description)

	props := decl.Parameters["properties"].(map[string]any)
	assert.Contains(t, props, "title")
	assert.Contains(t, props, "price")
	assert.Contains(t, props, "dry_run")
	assert.Contains(t, props, "X-Tenant")
	assert.NotContains(t, props, "internal", "skipped parameter")
	assert.NotContains(t, props, "X-Api-Key", "statically configured header")
	assert.Equal(t, []string{"title", "X-Tenant"}, decl.Parameters["required"])

	id, ok := batch.Names.Resolve("example_v1_items_post")
	assert.True(t, ok)
	assert.Equal(t, itemsToolID, id)
}

func TestFormat_EndpointWithoutBodySchema(t *testing.T) {
	ep := schema.NewEndpointSpec(schema.EndpointParams{Method: "GET", ServerURL: "https://example.com", Path: "/status"})
	batch := NewFormatter(false).Format([]schema.ToolDefinition{
		{ID: "s", Kind: schema.ToolKindFunction, Endpoint: &ep},
	})
	require.Len(t, batch.Declarations, 1)
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, batch.Declarations[0].Parameters)
	assert.Equal(t, "Call GET /status", batch.Declarations[0].Description)
}

func TestFormat_FunctionSchemaBackfill(t *testing.T) {
	batch := NewFormatter(false).Format([]schema.ToolDefinition{
		{
			ID:             "fn-1",
			Name:           "Lookup",
			Description:    "Find an order",
			Kind:           schema.ToolKindFunction,
			FunctionSchema: map[string]any{"strict": true},
		},
		{
			ID:   "fn-2",
			Kind: schema.ToolKindFunction,
			FunctionSchema: map[string]any{
				"name":        "get_time",
				"description": "Current time",
				"parameters": map[string]any{
					"type":       "object",
					"properties": map[string]any{"tz": map[string]any{"type": "string"}},
				},
			},
		},
	})
	require.Len(t, batch.Declarations, 2)

	first := batch.Declarations[0].WireMap()
	assert.Equal(t, "Lookup", first["name"])
	assert.Equal(t, "Find an order", first["description"])
	assert.Equal(t, true, first["strict"])
	assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, first["parameters"])

	second := batch.Declarations[1]
	assert.Equal(t, "get_time", second.Name)
	assert.Equal(t, "Current time", second.Description)
}

func TestFormat_SkipsInvalidTools(t *testing.T) {
	batch := NewFormatter(false).Format([]schema.ToolDefinition{
		{ID: "bad", Kind: schema.ToolKindFunction},
		{ID: "weird", Kind: "teleport"},
		{ID: "ok", Name: "ok", Kind: schema.ToolKindFunction, FunctionSchema: map[string]any{}},
	})
	require.Len(t, batch.Declarations, 1)
	assert.Equal(t, "ok", batch.Declarations[0].Name)
}

func TestFormat_UniqueNamesWithinBatch(t *testing.T) {
	a := itemsTool()
	b := itemsTool()
	b.ID = "0b1c2d3e-aaaa-bbbb-cccc-dddddddddddd"

	batch := NewFormatter(false).Format([]schema.ToolDefinition{a, b})
	require.Len(t, batch.Declarations, 2)
	assert.Equal(t, "example_v1_items_post", batch.Declarations[0].Name)
	assert.Equal(t, "example_v1_items_post_0b1c2d3e", batch.Declarations[1].Name)

	for _, d := range batch.Declarations {
		assert.True(t, IsLegalName(d.Name))
	}
	id, ok := batch.Names.Resolve("example_v1_items_post_0b1c2d3e")
	assert.True(t, ok)
	assert.Equal(t, b.ID, id)
}

func TestFormat_Idempotent(t *testing.T) {
	f := NewFormatter(false)
	defs := []schema.ToolDefinition{
		itemsTool(),
		{ID: "w", Kind: schema.ToolKindWebSearch},
		{ID: "fn", Name: "echo", Kind: schema.ToolKindFunction, FunctionSchema: map[string]any{"description": "Echo"}},
	}

	first, err := json.Marshal(f.Format(defs).Declarations)
	require.NoError(t, err)
	second, err := json.Marshal(f.Format(defs).Declarations)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, string(first), string(second))
}

func TestDeclaration_FlatWireShape(t *testing.T) {
	batch := NewFormatter(false).Format([]schema.ToolDefinition{itemsTool()})
	data, err := json.Marshal(batch.Declarations[0])
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "function", wire["type"])
	assert.Equal(t, "example_v1_items_post", wire["name"])
	assert.Contains(t, wire, "parameters")
	assert.NotContains(t, wire, "function")
}

func TestBatch_JSON(t *testing.T) {
	empty, err := Batch{}.JSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}
