package tools

import (
	"encoding/json"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// Batch is the formatted tool list of one turn together with the names it
// registered.
type Batch struct {
	Declarations []schema.ProviderToolDeclaration
	Names        *NameMap
}

// Len returns the number of declarations.
func (b Batch) Len() int { return len(b.Declarations) }

// JSON renders the declarations as indented JSON, for diagnostics.
func (b Batch) JSON() ([]byte, error) {
	if b.Declarations == nil {
		return []byte("[]"), nil
	}
	return json.MarshalIndent(b.Declarations, "", "  ")
}
