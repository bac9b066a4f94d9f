package handlers

import (
	"context"
	"sort"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// AreaHandlers provides MCP tool handlers for area registry listings.
// The area registry is only reachable over the WebSocket API.
type AreaHandlers struct{}

// NewAreaHandlers creates a new AreaHandlers instance.
func NewAreaHandlers() *AreaHandlers {
	return &AreaHandlers{}
}

// RegisterTools registers all area-related tools with the registry.
func (h *AreaHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.listAreasTool(), h.handleListAreas)
}

func (h *AreaHandlers) listAreasTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_areas",
		Description: "List all areas defined in Home Assistant",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "No parameters required",
		},
	}
}

func (h *AreaHandlers) handleListAreas(ctx context.Context, client homeassistant.Client, _ map[string]any) (*mcp.ToolsCallResult, error) {
	areas, err := client.GetAreaRegistry(ctx)
	if err != nil {
		return errorResult("Error listing areas: %v", err), nil
	}

	sort.Slice(areas, func(i, j int) bool {
		return areas[i].Name < areas[j].Name
	})

	return jsonResult(map[string]any{
		"count": len(areas),
		"areas": areas,
	})
}
