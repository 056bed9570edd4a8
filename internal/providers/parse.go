package providers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// responsesBody is the Responses API result.
type responsesBody struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Output []outputItem `json:"output"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// outputItem is one element of output[]. Exactly one variant pointer is set
// for the types the bridge acts on; recognised provider-side items leave
// both nil.
type outputItem struct {
	Type         string
	Message      *messageOutput
	FunctionCall *functionCallOutput
}

type messageOutput struct {
	ID      string        `json:"id"`
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Refusal string `json:"refusal"`
}

type functionCallOutput struct {
	ID        string `json:"id"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func (o *outputItem) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	o.Type = head.Type

	switch head.Type {
	case "message":
		o.Message = new(messageOutput)
		return json.Unmarshal(data, o.Message)
	case "function_call":
		o.FunctionCall = new(functionCallOutput)
		return json.Unmarshal(data, o.FunctionCall)
	}
	return nil
}

// parseResponse decodes a Responses API body once and extracts the final
// text and the valid function calls. Calls missing a call id or a name are
// dropped.
func parseResponse(raw []byte) (schema.LLMResponse, error) {
	var body responsesBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if body.Error != nil && body.Error.Message != "" {
		return schema.LLMResponse{}, fmt.Errorf("provider error %s: %s", body.Error.Code, body.Error.Message)
	}
	if body.Status == "incomplete" && body.IncompleteDetails != nil {
		slog.Warn("Provider response incomplete", "id", body.ID, "reason", body.IncompleteDetails.Reason)
	}

	out := schema.LLMResponse{ID: body.ID, Status: body.Status}
	var text strings.Builder

	for _, item := range body.Output {
		switch {
		case item.Message != nil:
			for _, part := range item.Message.Content {
				switch part.Type {
				case "output_text":
					text.WriteString(part.Text)
				case "refusal":
					text.WriteString(part.Refusal)
				}
			}
		case item.FunctionCall != nil:
			fc := item.FunctionCall
			if fc.CallID == "" || fc.Name == "" {
				slog.Warn("Dropping malformed function call", "id", fc.ID, "call_id", fc.CallID, "name", fc.Name)
				continue
			}
			args := fc.Arguments
			if strings.TrimSpace(args) == "" {
				args = "{}"
			}
			out.ToolCalls = append(out.ToolCalls, schema.ToolCallRequest{
				CallID:        fc.CallID,
				ObjectID:      fc.ID,
				Name:          fc.Name,
				ArgumentsJSON: args,
			})
		case item.Type == "reasoning", item.Type == "web_search_call", item.Type == "file_search_call":
			// Executed or produced provider-side.
		default:
			slog.Debug("Ignoring unknown output item", "type", item.Type)
		}
	}

	out.Text = text.String()
	if body.Usage != nil {
		out.Usage = map[string]int{
			"input_tokens":  body.Usage.InputTokens,
			"output_tokens": body.Usage.OutputTokens,
		}
	}
	return out, nil
}
