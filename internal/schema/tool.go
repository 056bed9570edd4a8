// Package schema holds the value types and collaborator contracts shared
// across oatsbridge packages. Apart from bus, it imports nothing from the
// rest of the module.
package schema

import (
	"errors"
	"fmt"
)

// ToolKind is the category of a stored tool.
type ToolKind string

const (
	ToolKindWebSearch  ToolKind = "web_search"
	ToolKindFileSearch ToolKind = "file_search"
	ToolKindFunction   ToolKind = "function"
)

// ErrInvalidTool is returned by ToolDefinition.Validate.
var ErrInvalidTool = errors.New("invalid tool definition")

// ToolDefinition is the canonical, stored identity of a capability.
// It is read-only input to the bridge.
type ToolDefinition struct {
	ID          string
	Name        string
	Description string
	Kind        ToolKind

	// Endpoint is set for tools backed by an imported HTTP operation.
	Endpoint *EndpointSpec
	// FunctionSchema is a {name, description, parameters} object for plain
	// function tools, or the options object for built-in tools.
	FunctionSchema map[string]any
	// SkipParameters hides endpoint parameters from the model.
	SkipParameters []string

	ServerURLOverride string
	StaticHeaders     map[string]string
}

// Validate checks the kind and the function tool invariant.
func (t ToolDefinition) Validate() error {
	switch t.Kind {
	case ToolKindWebSearch, ToolKindFileSearch:
		return nil
	case ToolKindFunction:
		if t.FunctionSchema == nil && t.Endpoint == nil {
			return fmt.Errorf("%w: function tool %q has neither a schema nor an endpoint", ErrInvalidTool, t.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q for tool %q", ErrInvalidTool, t.Kind, t.ID)
	}
}

// IsBuiltin reports whether the provider executes the tool itself.
func (t ToolDefinition) IsBuiltin() bool {
	return t.Kind == ToolKindWebSearch || t.Kind == ToolKindFileSearch
}
