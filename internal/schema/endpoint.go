package schema

import "strings"

// ParameterLocation is where a declared endpoint parameter travels.
type ParameterLocation string

const (
	ParamInQuery  ParameterLocation = "query"
	ParamInHeader ParameterLocation = "header"
	ParamInPath   ParameterLocation = "path"
)

// Parameter is one declared non-body parameter of an endpoint.
type Parameter struct {
	Name     string
	In       ParameterLocation
	Required bool
	Schema   map[string]any
}

// EndpointParams is the mutable input to NewEndpointSpec.
type EndpointParams struct {
	ID           string
	Version      string
	Method       string
	Path         string
	ServerURL    string
	APIServerURL string
	Description  string
	RequestBody  map[string]any
	Parameters   []Parameter
}

// EndpointSpec is an imported HTTP operation. It is built once and never
// changes; accessors hand out copies.
type EndpointSpec struct {
	id           string
	version      string
	method       string
	path         string
	serverURL    string
	apiServerURL string
	description  string
	requestBody  map[string]any
	parameters   []Parameter
}

// NewEndpointSpec deep-copies p into an immutable EndpointSpec.
func NewEndpointSpec(p EndpointParams) EndpointSpec {
	params := make([]Parameter, len(p.Parameters))
	for i, prm := range p.Parameters {
		params[i] = Parameter{
			Name:     prm.Name,
			In:       prm.In,
			Required: prm.Required,
			Schema:   CopyJSONMap(prm.Schema),
		}
	}
	method := strings.ToUpper(strings.TrimSpace(p.Method))
	if method == "" {
		method = "GET"
	}
	return EndpointSpec{
		id:           p.ID,
		version:      p.Version,
		method:       method,
		path:         strings.TrimSpace(p.Path),
		serverURL:    strings.TrimSpace(p.ServerURL),
		apiServerURL: strings.TrimSpace(p.APIServerURL),
		description:  p.Description,
		requestBody:  CopyJSONMap(p.RequestBody),
		parameters:   params,
	}
}

func (e EndpointSpec) ID() string            { return e.id }
func (e EndpointSpec) Version() string       { return e.version }
func (e EndpointSpec) Method() string        { return e.method }
func (e EndpointSpec) Path() string          { return e.path }
func (e EndpointSpec) ServerBaseURL() string { return e.serverURL }
func (e EndpointSpec) APIServerURL() string  { return e.apiServerURL }
func (e EndpointSpec) Description() string   { return e.description }

// RequestBodySchema returns a copy of the JSON Schema of the request body,
// or nil when the endpoint takes no body.
func (e EndpointSpec) RequestBodySchema() map[string]any { return CopyJSONMap(e.requestBody) }

// Parameters returns a copy of the declared non-body parameters.
func (e EndpointSpec) Parameters() []Parameter {
	out := make([]Parameter, len(e.parameters))
	for i, p := range e.parameters {
		out[i] = p
		out[i].Schema = CopyJSONMap(p.Schema)
	}
	return out
}

// ParametersIn returns the declared parameters for one location.
func (e EndpointSpec) ParametersIn(in ParameterLocation) []Parameter {
	var out []Parameter
	for _, p := range e.Parameters() {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}

// IsAbsolute reports whether Path is already a full http(s) URL.
func (e EndpointSpec) IsAbsolute() bool {
	return strings.HasPrefix(e.path, "http://") || strings.HasPrefix(e.path, "https://")
}

// HasBody reports whether the method carries a request body.
func (e EndpointSpec) HasBody() bool {
	switch e.method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// CopyJSONMap deep-copies a decoded JSON object.
func CopyJSONMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyJSONValue(v)
	}
	return out
}

func copyJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyJSONMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyJSONValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
