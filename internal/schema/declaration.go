package schema

import "encoding/json"

// ProviderToolDeclaration is one entry of the provider's tools array.
// Function tools carry Name, Description and Parameters; built-ins carry only
// Type plus Options. Derived per turn, never stored.
type ProviderToolDeclaration struct {
	Type        string
	Name        string
	Description string
	Parameters  map[string]any
	Options     map[string]any
}

// MarshalJSON renders the declaration flat: name, description, parameters
// and options are siblings of type.
func (d ProviderToolDeclaration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.WireMap())
}

// WireMap returns the flat wire object.
func (d ProviderToolDeclaration) WireMap() map[string]any {
	out := make(map[string]any, 4+len(d.Options))
	for k, v := range d.Options {
		out[k] = v
	}
	out["type"] = d.Type
	if d.Name != "" {
		out["name"] = d.Name
	}
	if d.Description != "" {
		out["description"] = d.Description
	}
	if d.Parameters != nil {
		out["parameters"] = d.Parameters
	}
	return out
}
