package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// EndpointRecord is the stored form of an imported HTTP operation.
type EndpointRecord struct {
	ID           string            `yaml:"id"`
	Version      string            `yaml:"version"`
	Method       string            `yaml:"method"`
	Path         string            `yaml:"path"`
	ServerURL    string            `yaml:"serverUrl"`
	APIServerURL string            `yaml:"apiServerUrl"`
	Description  string            `yaml:"description"`
	RequestBody  map[string]any    `yaml:"requestBody"`
	Parameters   []ParameterRecord `yaml:"parameters"`
}

// ParameterRecord is one declared query, header or path parameter.
type ParameterRecord struct {
	Name     string         `yaml:"name" json:"name"`
	In       string         `yaml:"in" json:"in"`
	Required bool           `yaml:"required" json:"required,omitempty"`
	Schema   map[string]any `yaml:"schema" json:"schema,omitempty"`
}

// ToolRecord is the stored form of a tool definition.
type ToolRecord struct {
	ID                string            `yaml:"id"`
	Name              string            `yaml:"name"`
	Description       string            `yaml:"description"`
	Kind              string            `yaml:"kind"`
	EndpointID        string            `yaml:"endpointId"`
	FunctionSchema    map[string]any    `yaml:"functionSchema"`
	SkipParameters    []string          `yaml:"skipParameters"`
	ServerURLOverride string            `yaml:"serverUrlOverride"`
	StaticHeaders     map[string]string `yaml:"staticHeaders"`
}

// ChatSettingsRecord is a stored configuration with its ordered tool ids.
type ChatSettingsRecord struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	SystemPrompt string   `yaml:"systemPrompt"`
	Model        string   `yaml:"model"`
	Tools        []string `yaml:"tools"`
}

// UpsertEndpoint inserts or replaces an endpoint.
func (db *DB) UpsertEndpoint(ctx context.Context, r EndpointRecord) error {
	body, err := encodeJSON(r.RequestBody)
	if err != nil {
		return fmt.Errorf("endpoint %s request body: %w", r.ID, err)
	}
	params, err := encodeJSON(r.Parameters)
	if err != nil {
		return fmt.Errorf("endpoint %s parameters: %w", r.ID, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO endpoints (id, version, method, path, server_url, api_server_url, description, request_body, parameters)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Version, r.Method, r.Path, r.ServerURL, r.APIServerURL, r.Description, body, params)
	if err != nil {
		return fmt.Errorf("upsert endpoint %s: %w", r.ID, err)
	}
	return nil
}

// UpsertTool inserts or replaces a tool.
func (db *DB) UpsertTool(ctx context.Context, r ToolRecord) error {
	fs, err := encodeJSON(r.FunctionSchema)
	if err != nil {
		return fmt.Errorf("tool %s function schema: %w", r.ID, err)
	}
	skip, err := encodeJSON(r.SkipParameters)
	if err != nil {
		return fmt.Errorf("tool %s skip parameters: %w", r.ID, err)
	}
	headers, err := encodeJSON(r.StaticHeaders)
	if err != nil {
		return fmt.Errorf("tool %s static headers: %w", r.ID, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tools (id, name, description, kind, endpoint_id, function_schema, skip_parameters, server_url_override, static_headers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Description, r.Kind, r.EndpointID, fs, skip, r.ServerURLOverride, headers)
	if err != nil {
		return fmt.Errorf("upsert tool %s: %w", r.ID, err)
	}
	return nil
}

// UpsertChatSettings inserts or replaces a configuration and its tool order.
func (db *DB) UpsertChatSettings(ctx context.Context, r ChatSettingsRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO chat_settings (id, name, system_prompt, model) VALUES (?, ?, ?, ?)`,
		r.ID, r.Name, r.SystemPrompt, r.Model); err != nil {
		return fmt.Errorf("upsert chat settings %s: %w", r.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_settings_tools WHERE chat_settings_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear tools of %s: %w", r.ID, err)
	}
	for i, toolID := range r.Tools {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO chat_settings_tools (chat_settings_id, tool_id, position) VALUES (?, ?, ?)`,
			r.ID, toolID, i); err != nil {
			return fmt.Errorf("link tool %s to %s: %w", toolID, r.ID, err)
		}
	}
	return tx.Commit()
}

// ChatSettings implements schema.SettingsSource. Tools come back in their
// configured order with endpoints resolved.
func (db *DB) ChatSettings(ctx context.Context, id string) (schema.ChatSettings, error) {
	var s schema.ChatSettings
	err := db.QueryRowContext(ctx,
		`SELECT id, name, system_prompt, model FROM chat_settings WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.SystemPrompt, &s.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.ChatSettings{}, fmt.Errorf("chat settings %s: %w", id, schema.ErrNotFound)
	}
	if err != nil {
		return schema.ChatSettings{}, fmt.Errorf("chat settings %s: %w", id, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT t.id, t.name, t.description, t.kind, t.endpoint_id, t.function_schema,
		        t.skip_parameters, t.server_url_override, t.static_headers
		 FROM chat_settings_tools cst JOIN tools t ON t.id = cst.tool_id
		 WHERE cst.chat_settings_id = ? ORDER BY cst.position`, id)
	if err != nil {
		return schema.ChatSettings{}, fmt.Errorf("tools of %s: %w", id, err)
	}
	var records []ToolRecord
	for rows.Next() {
		var r ToolRecord
		var fs, skip, headers string
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Kind, &r.EndpointID, &fs, &skip, &r.ServerURLOverride, &headers); err != nil {
			rows.Close()
			return schema.ChatSettings{}, fmt.Errorf("scan tool: %w", err)
		}
		if err := decodeJSON(fs, &r.FunctionSchema); err != nil {
			rows.Close()
			return schema.ChatSettings{}, fmt.Errorf("tool %s function schema: %w", r.ID, err)
		}
		if err := decodeJSON(skip, &r.SkipParameters); err != nil {
			rows.Close()
			return schema.ChatSettings{}, fmt.Errorf("tool %s skip parameters: %w", r.ID, err)
		}
		if err := decodeJSON(headers, &r.StaticHeaders); err != nil {
			rows.Close()
			return schema.ChatSettings{}, fmt.Errorf("tool %s static headers: %w", r.ID, err)
		}
		records = append(records, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return schema.ChatSettings{}, fmt.Errorf("tools of %s: %w", id, err)
	}

	for _, r := range records {
		def := schema.ToolDefinition{
			ID:                r.ID,
			Name:              r.Name,
			Description:       r.Description,
			Kind:              schema.ToolKind(r.Kind),
			FunctionSchema:    r.FunctionSchema,
			SkipParameters:    r.SkipParameters,
			ServerURLOverride: r.ServerURLOverride,
			StaticHeaders:     r.StaticHeaders,
		}
		if r.EndpointID != "" {
			ep, err := db.Endpoint(ctx, r.EndpointID)
			switch {
			case errors.Is(err, schema.ErrNotFound):
				slog.Warn("Tool references a missing endpoint", "tool", r.ID, "endpoint", r.EndpointID)
			case err != nil:
				return schema.ChatSettings{}, fmt.Errorf("tool %s: %w", r.ID, err)
			default:
				def.Endpoint = &ep
			}
		}
		s.Tools = append(s.Tools, def)
	}
	return s, nil
}

// Endpoint loads one endpoint as an immutable EndpointSpec.
func (db *DB) Endpoint(ctx context.Context, id string) (schema.EndpointSpec, error) {
	var r EndpointRecord
	var body, params string
	err := db.QueryRowContext(ctx,
		`SELECT id, version, method, path, server_url, api_server_url, description, request_body, parameters
		 FROM endpoints WHERE id = ?`, id,
	).Scan(&r.ID, &r.Version, &r.Method, &r.Path, &r.ServerURL, &r.APIServerURL, &r.Description, &body, &params)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.EndpointSpec{}, fmt.Errorf("endpoint %s: %w", id, schema.ErrNotFound)
	}
	if err != nil {
		return schema.EndpointSpec{}, fmt.Errorf("endpoint %s: %w", id, err)
	}
	if err := decodeJSON(body, &r.RequestBody); err != nil {
		return schema.EndpointSpec{}, fmt.Errorf("endpoint %s request body: %w", id, err)
	}
	if err := decodeJSON(params, &r.Parameters); err != nil {
		return schema.EndpointSpec{}, fmt.Errorf("endpoint %s parameters: %w", id, err)
	}
	return r.Spec(), nil
}

// Spec builds the immutable value the bridge works with.
func (r EndpointRecord) Spec() schema.EndpointSpec {
	params := make([]schema.Parameter, 0, len(r.Parameters))
	for _, p := range r.Parameters {
		params = append(params, schema.Parameter{
			Name:     p.Name,
			In:       schema.ParameterLocation(p.In),
			Required: p.Required,
			Schema:   p.Schema,
		})
	}
	return schema.NewEndpointSpec(schema.EndpointParams{
		ID:           r.ID,
		Version:      r.Version,
		Method:       r.Method,
		Path:         r.Path,
		ServerURL:    r.ServerURL,
		APIServerURL: r.APIServerURL,
		Description:  r.Description,
		RequestBody:  r.RequestBody,
		Parameters:   params,
	})
}

// encodeJSON stores nil values as "".
func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return "", nil
	}
	return string(data), nil
}

func decodeJSON(s string, dst any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}
