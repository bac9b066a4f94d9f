// Package handlers provides MCP tool handlers for Home Assistant operations.
package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/zorak1103/hass-bridge/internal/digest"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// getString safely extracts a string value from a map of arguments.
// It returns an empty string if the key doesn't exist or the value is not a string.
// This is a common pattern for handling optional parameters in MCP tool calls.
func getString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// getInt safely extracts an integer value from a map of arguments.
// JSON numbers arrive as float64, so both representations are accepted.
// Returns def if the key is absent or not numeric.
func getInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// getBool safely extracts a boolean value from a map of arguments.
func getBool(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

// getStringSlice safely extracts a string slice from a map of arguments.
// Non-string elements are skipped. Returns nil if the key is absent.
func getStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// getMap safely extracts a nested object from a map of arguments.
func getMap(args map[string]any, key string) map[string]any {
	if v, ok := args[key].(map[string]any); ok {
		return v
	}
	return nil
}

// errorResult builds a tool result carrying an error message.
// Tool failures are reported in-band, never as protocol faults.
func errorResult(format string, a ...any) *mcp.ToolsCallResult {
	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{mcp.NewTextContent(fmt.Sprintf(format, a...))},
		IsError: true,
	}
}

// textResult builds a plain-text tool result.
func textResult(text string) *mcp.ToolsCallResult {
	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{mcp.NewTextContent(text)},
	}
}

// jsonResult marshals v as indented JSON into a tool result.
func jsonResult(v any) (*mcp.ToolsCallResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error formatting result: %v", err), nil
	}
	return textResult(string(output)), nil
}

// normalizeOptions builds digest options from the shared fields/detailed
// tool parameters.
func normalizeOptions(args map[string]any) digest.NormalizeOptions {
	return digest.NormalizeOptions{
		Fields:   getStringSlice(args, "fields"),
		Detailed: getBool(args, "detailed"),
	}
}
