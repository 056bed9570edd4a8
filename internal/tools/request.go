package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// ErrNoBaseURL is returned when no http(s) URL can be built for a tool.
var ErrNoBaseURL = errors.New("no valid http(s) base URL")

func (e *Executor) buildRequest(ctx context.Context, def schema.ToolDefinition, args map[string]any) (*http.Request, error) {
	ep := *def.Endpoint

	u, err := resolveURL(def, args)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for _, p := range ep.ParametersIn(schema.ParamInQuery) {
		v, ok := args[p.Name]
		switch {
		case ok:
			for _, s := range queryValues(v) {
				q.Add(p.Name, s)
			}
		case p.Required:
			q.Set(p.Name, "")
		}
	}
	u.RawQuery = q.Encode()

	var body *bytes.Reader
	if ep.HasBody() {
		data, err := json.Marshal(bodyFromArgs(ep, args))
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, ep.Method(), u.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, ep.Method(), u.String(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range def.StaticHeaders {
		req.Header.Set(k, v)
	}
	for _, p := range ep.ParametersIn(schema.ParamInHeader) {
		if hasHeader(def.StaticHeaders, p.Name) {
			continue
		}
		v, ok := args[p.Name]
		switch {
		case ok:
			req.Header.Set(p.Name, scalarString(v))
		case p.Required:
			req.Header.Set(p.Name, scalarString(p.Schema["default"]))
		}
	}
	if e.credential != "" && e.providerHost != "" &&
		strings.EqualFold(u.Hostname(), e.providerHost) &&
		req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+e.credential)
	}

	return req, nil
}

// resolveURL picks the base URL by priority (tool override, absolute
// endpoint path, endpoint server, API server), substitutes path parameters
// and rejects anything that is not http(s).
func resolveURL(def schema.ToolDefinition, args map[string]any) (*url.URL, error) {
	ep := *def.Endpoint
	path := substitutePath(ep, args)

	var raw string
	switch {
	case def.ServerURLOverride != "" && ep.IsAbsolute():
		raw = joinURL(def.ServerURLOverride, pathOf(path))
	case def.ServerURLOverride != "":
		raw = joinURL(def.ServerURLOverride, path)
	case ep.IsAbsolute():
		raw = path
	case ep.ServerBaseURL() != "":
		raw = joinURL(ep.ServerBaseURL(), path)
	default:
		raw = joinURL(ep.APIServerURL(), path)
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w for tool %s (got %q)", ErrNoBaseURL, def.Name, raw)
	}
	return u, nil
}

// substitutePath fills {name} placeholders from path parameters or, when
// the endpoint does not declare them, from any argument of the same name.
func substitutePath(ep schema.EndpointSpec, args map[string]any) string {
	path := ep.Path()
	if !strings.Contains(path, "{") {
		return path
	}
	for name, v := range args {
		placeholder := "{" + name + "}"
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(scalarString(v)))
		}
	}
	return path
}

// pathOf returns the path and query of an absolute URL.
func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery != "" {
		return u.EscapedPath() + "?" + u.RawQuery
	}
	return u.EscapedPath()
}

// bodyFromArgs keeps the declared body properties the model supplied.
func bodyFromArgs(ep schema.EndpointSpec, args map[string]any) map[string]any {
	body := make(map[string]any)
	props, _ := ep.RequestBodySchema()["properties"].(map[string]any)
	for name := range props {
		if v, ok := args[name]; ok {
			body[name] = v
		}
	}
	return body
}

func queryValues(v any) []string {
	if list, ok := v.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, scalarString(item))
		}
		return out
	}
	return []string{scalarString(v)}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
