package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameMap_RegisterResolve(t *testing.T) {
	m := NewNameMap(false)
	m.Register("example_v1_items_post", "7c9e6679-7425-40de-944b-e07fc1f90ae7")

	id, ok := m.Resolve("example_v1_items_post")
	assert.True(t, ok)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", id)

	_, ok = m.Resolve("ghost_tool")
	assert.False(t, ok)
}

func TestNameMap_LastWriterWins(t *testing.T) {
	m := NewNameMap(false)
	m.Register("search", "a")
	m.Register("search", "b")

	id, ok := m.Resolve("search")
	assert.True(t, ok)
	assert.Equal(t, "b", id)
	assert.Equal(t, 1, m.Len())
}

func TestNameMap_LegacyPrefixDisabledByDefault(t *testing.T) {
	m := NewNameMap(false)
	m.Register("search_7c9e6679", "7c9e6679-7425-40de-944b-e07fc1f90ae7")

	_, ok := m.Resolve("old_name_7c9e6679")
	assert.False(t, ok)
}

func TestNameMap_LegacyPrefixUnique(t *testing.T) {
	m := NewNameMap(true)
	m.Register("search_7c9e6679", "7c9e6679-7425-40de-944b-e07fc1f90ae7")
	m.Register("weather", "0b1c2d3e-0000-0000-0000-000000000000")

	id, ok := m.Resolve("old_name_7c9e6679")
	assert.True(t, ok)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", id)
}

func TestNameMap_LegacyPrefixAmbiguousIsNotFound(t *testing.T) {
	m := NewNameMap(true)
	m.Register("a", "abcdef12-1111")
	m.Register("b", "abcdef12-2222")

	_, ok := m.Resolve("stale_abcdef12")
	assert.False(t, ok)
}

func TestNameMap_LegacyPrefixShortTokenIgnored(t *testing.T) {
	m := NewNameMap(true)
	m.Register("a", "abc-123")

	_, ok := m.Resolve("x_abc")
	assert.False(t, ok)
}

func TestNameMap_Names(t *testing.T) {
	m := NewNameMap(false)
	m.Register("zeta", "1")
	m.Register("alpha", "2")
	assert.Equal(t, []string{"alpha", "zeta"}, m.Names())
}
