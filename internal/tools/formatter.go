package tools

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// Options of the built-in tools that are forwarded from FunctionSchema.
var (
	webSearchOptions  = []string{"user_location", "search_context_size"}
	fileSearchOptions = []string{"vector_store_ids", "max_num_results", "filters", "ranking_options"}
)

// Formatter turns stored tool definitions into provider declarations.
type Formatter struct {
	legacyPrefixMatch bool
}

// NewFormatter creates a Formatter. legacyPrefixMatch is passed to every
// NameMap it builds.
func NewFormatter(legacyPrefixMatch bool) *Formatter {
	return &Formatter{legacyPrefixMatch: legacyPrefixMatch}
}

// Format declares each tool in order. Tools that cannot be declared are
// logged and skipped. Function names are unique within the batch.
func (f *Formatter) Format(defs []schema.ToolDefinition) Batch {
	batch := Batch{
		Declarations: make([]schema.ProviderToolDeclaration, 0, len(defs)),
		Names:        NewNameMap(f.legacyPrefixMatch),
	}
	used := make(map[string]bool, len(defs))

	for _, def := range defs {
		decl, err := declare(def)
		if err != nil {
			slog.Warn("skipping tool", "tool_id", def.ID, "name", def.Name, "err", err)
			continue
		}
		if decl.Type == string(schema.ToolKindFunction) {
			if used[decl.Name] {
				decl.Name = UniqueName(decl.Name, def.ID)
			}
			if used[decl.Name] {
				slog.Warn("skipping tool with duplicate name", "tool_id", def.ID, "name", decl.Name)
				continue
			}
			if !IsLegalName(decl.Name) {
				slog.Warn("skipping tool with illegal name", "tool_id", def.ID, "name", decl.Name)
				continue
			}
			used[decl.Name] = true
			batch.Names.Register(decl.Name, def.ID)
		}
		batch.Declarations = append(batch.Declarations, decl)
	}
	return batch
}

// List returns the declarations for settings.
func (f *Formatter) List(settings schema.ChatSettings) []schema.ProviderToolDeclaration {
	return f.Format(settings.Tools).Declarations
}

func declare(def schema.ToolDefinition) (schema.ProviderToolDeclaration, error) {
	if err := def.Validate(); err != nil {
		return schema.ProviderToolDeclaration{}, err
	}
	switch def.Kind {
	case schema.ToolKindWebSearch:
		return schema.ProviderToolDeclaration{
			Type:    string(schema.ToolKindWebSearch),
			Options: pick(def.FunctionSchema, webSearchOptions),
		}, nil
	case schema.ToolKindFileSearch:
		return schema.ProviderToolDeclaration{
			Type:    string(schema.ToolKindFileSearch),
			Options: pick(def.FunctionSchema, fileSearchOptions),
		}, nil
	}

	if def.Endpoint != nil {
		return declareEndpoint(def), nil
	}
	return declareFunction(def), nil
}

func declareEndpoint(def schema.ToolDefinition) schema.ProviderToolDeclaration {
	ep := *def.Endpoint
	description := firstNonEmpty(
		def.Description,
		ep.Description(),
		fmt.Sprintf("Call %s %s", ep.Method(), ep.Path()),
	)
	return schema.ProviderToolDeclaration{
		Type:        string(schema.ToolKindFunction),
		Name:        LegalName(def),
		Description: description,
		Parameters:  skipParameters(endpointParameters(def), def.SkipParameters),
	}
}

// declareFunction uses the stored schema as is, filling in missing
// name, description and parameters from the tool itself. Unknown schema
// keys such as "strict" are carried through.
func declareFunction(def schema.ToolDefinition) schema.ProviderToolDeclaration {
	fs := schema.CopyJSONMap(def.FunctionSchema)

	params, _ := fs["parameters"].(map[string]any)
	if params == nil {
		params = emptyObjectSchema()
	}
	description, _ := fs["description"].(string)

	var options map[string]any
	for k, v := range fs {
		switch k {
		case "type", "name", "description", "parameters":
			continue
		}
		if options == nil {
			options = make(map[string]any)
		}
		options[k] = v
	}

	return schema.ProviderToolDeclaration{
		Type:        string(schema.ToolKindFunction),
		Name:        LegalName(def),
		Description: firstNonEmpty(description, def.Description, def.Name),
		Parameters:  skipParameters(params, def.SkipParameters),
		Options:     options,
	}
}

// endpointParameters builds the object schema the model fills in: the body
// properties, then declared path, query and header parameters that the body
// does not already define. Headers with a configured static value are left
// out.
func endpointParameters(def schema.ToolDefinition) map[string]any {
	ep := *def.Endpoint
	body := ep.RequestBodySchema()

	props, _ := body["properties"].(map[string]any)
	if props == nil {
		props = make(map[string]any)
	}
	required := stringList(body["required"])

	for _, p := range ep.Parameters() {
		if _, exists := props[p.Name]; exists {
			continue
		}
		if p.In == schema.ParamInHeader && hasHeader(def.StaticHeaders, p.Name) {
			continue
		}
		prop := p.Schema
		if prop == nil {
			prop = map[string]any{"type": "string"}
		}
		if _, ok := prop["description"]; !ok {
			prop["description"] = fmt.Sprintf("%s parameter %s", p.In, p.Name)
		}
		props[p.Name] = prop
		if p.Required && !contains(required, p.Name) {
			required = append(required, p.Name)
		}
	}

	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// skipParameters removes hidden names from properties and required. It
// never fails; a malformed schema is returned unchanged.
func skipParameters(params map[string]any, skip []string) map[string]any {
	if len(skip) == 0 {
		return params
	}
	hidden := make(map[string]bool, len(skip))
	for _, s := range skip {
		hidden[s] = true
	}

	if props, ok := params["properties"].(map[string]any); ok {
		for name := range hidden {
			delete(props, name)
		}
	}
	if _, ok := params["required"]; ok {
		var kept []string
		for _, r := range stringList(params["required"]) {
			if !hidden[r] {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			params["required"] = kept
		} else {
			delete(params, "required")
		}
	}
	return params
}

func emptyObjectSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func pick(src map[string]any, keys []string) map[string]any {
	var out map[string]any
	for _, k := range keys {
		v, ok := src[k]
		if !ok || v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(keys))
		}
		out[k] = v
	}
	return out
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
