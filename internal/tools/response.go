package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// audioPathMarker marks endpoints that return audio even when the content
// type is generic.
const audioPathMarker = "/audio/"

// normalize turns a successful response body into model input.
func (e *Executor) normalize(path string, status int, contentType string, body []byte) string {
	mediaType := mediaTypeOf(contentType)

	if isAudio(mediaType, path) {
		if e.artifacts == nil {
			return "Error: audio response received but no artifact directory is configured"
		}
		saved, err := e.artifacts.Save(body, audioContentType(mediaType))
		if err != nil {
			return fmt.Sprintf("Error saving audio response: %v", err)
		}
		return "Audio file generated at " + saved
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Sprintf("Request succeeded with status %d and an empty body.", status)
	}

	if isJSON(mediaType) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err == nil {
			return buf.String()
		}
	}
	return string(body)
}

func mediaTypeOf(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mediaType
}

func isAudio(mediaType, path string) bool {
	if strings.HasPrefix(mediaType, "audio/") {
		return true
	}
	if !strings.Contains(strings.ToLower(path), audioPathMarker) {
		return false
	}
	return !isJSON(mediaType) && !strings.HasPrefix(mediaType, "text/")
}

// audioContentType returns the type used to pick an extension; generic
// types on audio paths fall back to the default.
func audioContentType(mediaType string) string {
	if strings.HasPrefix(mediaType, "audio/") {
		return mediaType
	}
	return "audio/mpeg"
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
