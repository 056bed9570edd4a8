package tools

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

const (
	// MaxNameLength is the provider's limit on function names.
	MaxNameLength = 64

	fallbackName  = "tool"
	genericPrefix = "generic_api_tool_"
	shortIDLength = 8
)

var (
	legalNameRE  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	versionRE    = regexp.MustCompile(`^v\d+`)
	separatorsRE = regexp.MustCompile(`_{2,}`)
)

// IsLegalName reports whether name is accepted by the provider.
func IsLegalName(name string) bool {
	return legalNameRE.MatchString(name)
}

// Sanitize projects an arbitrary name into the provider's charset.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < utf8.RuneSelf && isNameChar(byte(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" {
		return fallbackName
	}
	if !isLetter(s[0]) && s[0] != '_' {
		s = "f_" + s
	}
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// ShortID returns the first eight alphanumeric characters of a tool id.
func ShortID(id string) string {
	var b strings.Builder
	for i := 0; i < len(id) && b.Len() < shortIDLength; i++ {
		if c := id[i]; isLetter(c) || isDigit(c) {
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return "00000000"
	}
	return b.String()
}

// SynthesizeName builds a traceable name for an endpoint-backed tool from
// its host, API version, path segments and method, e.g.
// "POST https://api.example.com/v1/items" -> "example_v1_items_post".
func SynthesizeName(ep schema.EndpointSpec, toolID string) string {
	host, segments := endpointLocation(ep)

	var version string
	if len(segments) > 0 && versionRE.MatchString(segments[0]) {
		version, segments = segments[0], segments[1:]
	}

	if host == "" && version == "" && len(segments) == 0 {
		return Sanitize(genericPrefix + ShortID(toolID))
	}

	parts := make([]string, 0, len(segments)+3)
	for _, p := range append([]string{host, version}, segments...) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, strings.ToLower(ep.Method()))

	name := collapse(strings.Join(parts, "_"))
	if name == "" {
		return Sanitize(genericPrefix + ShortID(toolID))
	}
	return Sanitize(name)
}

// LegalName is the provider-visible name of def. It depends only on the
// stored definition, so the same tool gets the same name on every turn.
func LegalName(def schema.ToolDefinition) string {
	if def.Endpoint != nil {
		return SynthesizeName(*def.Endpoint, def.ID)
	}
	if n, _ := def.FunctionSchema["name"].(string); strings.TrimSpace(n) != "" {
		return Sanitize(strings.TrimSpace(n))
	}
	if strings.TrimSpace(def.Name) != "" {
		return Sanitize(strings.TrimSpace(def.Name))
	}
	return Sanitize(def.ID)
}

// UniqueName disambiguates name with the tool's short id, staying within
// MaxNameLength.
func UniqueName(name, toolID string) string {
	suffix := "_" + ShortID(toolID)
	if len(name)+len(suffix) > MaxNameLength {
		name = name[:MaxNameLength-len(suffix)]
	}
	return name + suffix
}

// endpointLocation returns the host label and the cleaned path segments of
// the endpoint's effective URL.
func endpointLocation(ep schema.EndpointSpec) (string, []string) {
	raw := ep.Path()
	if !ep.IsAbsolute() {
		base := ep.ServerBaseURL()
		if base == "" {
			base = ep.APIServerURL()
		}
		raw = joinURL(base, ep.Path())
	}

	var hostname, path string
	if u, err := url.Parse(raw); err == nil {
		hostname, path = u.Hostname(), u.Path
	} else {
		path = raw
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg = cleanLabel(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return hostLabel(hostname), segments
}

// hostLabel drops leading "www"/"api" labels and the top-level domain:
// "api.example.com" -> "example".
func hostLabel(hostname string) string {
	if hostname == "" || net.ParseIP(hostname) != nil {
		return ""
	}
	labels := strings.Split(strings.ToLower(hostname), ".")
	for len(labels) > 1 && (labels[0] == "www" || labels[0] == "api") {
		labels = labels[1:]
	}
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}
	return cleanLabel(strings.Join(labels, "_"))
}

func cleanLabel(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if c := s[i]; isNameChar(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Trim(separatorsRE.ReplaceAllString(s, "_"), "_")
}

func joinURL(base, path string) string {
	switch {
	case base == "":
		return path
	case path == "":
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func isLetter(c byte) bool   { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isNameChar(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' || c == '-' }
