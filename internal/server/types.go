package server

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"n8n-mcp/internal/tools"
)

// CallRequest is the body of POST /mcp/call and the params of tools/call.
// Name is nil when the name key is absent; an empty name is passed on to the
// dispatcher, which reports it as an unknown tool.
type CallRequest struct {
	Name *string        `json:"name"`
	Args map[string]any `json:"arguments"`
}

func toMCPTools(descs []tools.Descriptor) ([]mcp.Tool, error) {
	out := make([]mcp.Tool, 0, len(descs))
	for _, d := range descs {
		schema, err := json.Marshal(d.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encode input schema of %s: %w", d.Name, err)
		}
		out = append(out, mcp.NewToolWithRawSchema(d.Name, d.Description, schema))
	}
	return out, nil
}

func toCallToolResult(res tools.Result) *mcp.CallToolResult {
	if res.IsError {
		return mcp.NewToolResultError(res.Payload)
	}
	return mcp.NewToolResultText(res.Payload)
}
