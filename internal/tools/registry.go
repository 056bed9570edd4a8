package tools

import (
	"log/slog"
	"sort"
	"strings"
)

// minLegacyToken is the shortest trailing token the legacy prefix match
// will consider.
const minLegacyToken = 6

// NameMap associates provider-visible names with canonical tool ids for one
// turn. It is built by Formatter.Format and is not safe for concurrent
// writers; each turn owns its own map.
type NameMap struct {
	byName       map[string]string
	legacyPrefix bool
}

// NewNameMap returns an empty map. With legacyPrefix set, Resolve falls back
// to matching the name's trailing "_" token against canonical id prefixes.
func NewNameMap(legacyPrefix bool) *NameMap {
	return &NameMap{byName: make(map[string]string), legacyPrefix: legacyPrefix}
}

// Register maps legalName to toolID. The last registration for a name wins.
func (m *NameMap) Register(legalName, toolID string) {
	if prev, ok := m.byName[legalName]; ok && prev != toolID {
		slog.Warn("tool name collision, replacing mapping", "name", legalName, "previous", prev, "tool_id", toolID)
	}
	m.byName[legalName] = toolID
}

// Resolve returns the canonical id registered for legalName.
func (m *NameMap) Resolve(legalName string) (string, bool) {
	if id, ok := m.byName[legalName]; ok {
		return id, true
	}
	if !m.legacyPrefix {
		return "", false
	}
	return m.resolveByPrefix(legalName)
}

// resolveByPrefix matches the trailing token of legalName against the
// alphanumeric prefix of every registered id. It only answers when exactly
// one id matches.
func (m *NameMap) resolveByPrefix(legalName string) (string, bool) {
	token := legalName
	if i := strings.LastIndexByte(legalName, '_'); i >= 0 {
		token = legalName[i+1:]
	}
	if len(token) < minLegacyToken {
		return "", false
	}

	var match string
	for _, id := range m.ids() {
		if !strings.HasPrefix(alnum(id), token) {
			continue
		}
		if match != "" {
			slog.Warn("legacy tool name match is ambiguous", "name", legalName, "candidates", []string{match, id})
			return "", false
		}
		match = id
	}
	if match == "" {
		return "", false
	}
	slog.Info("resolved tool by legacy prefix match", "name", legalName, "tool_id", match)
	return match, true
}

// Len returns the number of registered names.
func (m *NameMap) Len() int { return len(m.byName) }

// Names returns the registered names in sorted order.
func (m *NameMap) Names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ids returns the distinct registered ids in sorted order.
func (m *NameMap) ids() []string {
	seen := make(map[string]bool, len(m.byName))
	out := make([]string, 0, len(m.byName))
	for _, id := range m.byName {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func alnum(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if c := s[i]; isLetter(c) || isDigit(c) {
			b.WriteByte(c)
		}
	}
	return b.String()
}
