package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// defaultErrorLogLines caps the returned error log tail.
const defaultErrorLogLines = 100

// integrationMentionRe finds bracketed integration references in log lines,
// e.g. "[homeassistant.components.mqtt]".
var integrationMentionRe = regexp.MustCompile(`\[([a-zA-Z0-9_.]+)\]`)

// SystemHandlers provides MCP tool handlers for instance-level operations.
type SystemHandlers struct{}

// NewSystemHandlers creates a new SystemHandlers instance.
func NewSystemHandlers() *SystemHandlers {
	return &SystemHandlers{}
}

// RegisterTools registers all system-related tools with the registry.
func (h *SystemHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.getVersionTool(), h.handleGetVersion)
	registry.RegisterTool(h.restartTool(), h.handleRestart)
	registry.RegisterTool(h.getErrorLogTool(), h.handleGetErrorLog)
}

func (h *SystemHandlers) getVersionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_version",
		Description: "Get the Home Assistant version",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "No parameters required",
		},
	}
}

func (h *SystemHandlers) restartTool() mcp.Tool {
	return mcp.Tool{
		Name:        "restart_ha",
		Description: "Restart Home Assistant. The instance will be unavailable while it restarts",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "No parameters required",
		},
	}
}

func (h *SystemHandlers) getErrorLogTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_error_log",
		Description: "Get the Home Assistant error log tail with error/warning counts and integration mentions",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Optional log tail size",
			Properties: map[string]mcp.JSONSchema{
				"lines": {
					Type:        "number",
					Description: "Maximum number of log lines to return",
					Default:     defaultErrorLogLines,
				},
			},
		},
	}
}

func (h *SystemHandlers) handleGetVersion(ctx context.Context, client homeassistant.Client, _ map[string]any) (*mcp.ToolsCallResult, error) {
	version, err := client.GetVersion(ctx)
	if err != nil {
		return errorResult("Error getting version: %v", err), nil
	}
	return textResult("Home Assistant version: " + version), nil
}

func (h *SystemHandlers) handleRestart(ctx context.Context, client homeassistant.Client, _ map[string]any) (*mcp.ToolsCallResult, error) {
	if _, err := client.CallService(ctx, "homeassistant", "restart", nil); err != nil {
		return errorResult("Error restarting Home Assistant: %v", err), nil
	}
	return textResult("Home Assistant is restarting"), nil
}

func (h *SystemHandlers) handleGetErrorLog(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	maxLines := getInt(args, "lines", defaultErrorLogLines)
	if maxLines <= 0 {
		maxLines = defaultErrorLogLines
	}

	logText, err := client.GetErrorLog(ctx)
	if err != nil {
		return errorResult("Error getting error log: %v", err), nil
	}

	return jsonResult(analyzeErrorLog(logText, maxLines))
}

// analyzeErrorLog counts ERROR and WARNING lines, tallies bracketed
// integration mentions, and truncates the log to its last maxLines lines.
func analyzeErrorLog(logText string, maxLines int) map[string]any {
	lines := strings.Split(strings.TrimRight(logText, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		lines = nil
	}

	errorCount := 0
	warningCount := 0
	mentions := make(map[string]int)
	for _, line := range lines {
		switch {
		case strings.Contains(line, "ERROR"):
			errorCount++
		case strings.Contains(line, "WARNING"):
			warningCount++
		}
		for _, match := range integrationMentionRe.FindAllStringSubmatch(line, -1) {
			mentions[match[1]]++
		}
	}

	truncated := false
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
		truncated = true
	}

	return map[string]any{
		"error_count":          errorCount,
		"warning_count":        warningCount,
		"integration_mentions": mentions,
		"log_text":             strings.Join(lines, "\n"),
		"truncated":            truncated,
	}
}
