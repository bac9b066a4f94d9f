package handlers

import (
	"context"
	"sort"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// AutomationHandlers provides MCP tool handlers for automation listings.
type AutomationHandlers struct{}

// NewAutomationHandlers creates a new AutomationHandlers instance.
func NewAutomationHandlers() *AutomationHandlers {
	return &AutomationHandlers{}
}

// RegisterTools registers all automation-related tools with the registry.
func (h *AutomationHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.listAutomationsTool(), h.handleListAutomations)
}

func (h *AutomationHandlers) listAutomationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_automations",
		Description: "List all automations with their state, alias, and last trigger time",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "No parameters required",
		},
	}
}

// automationView is the projection returned per automation.
type automationView struct {
	ID            string `json:"id,omitempty"`
	EntityID      string `json:"entity_id"`
	State         string `json:"state"`
	Alias         string `json:"alias"`
	LastTriggered string `json:"last_triggered,omitempty"`
}

func (h *AutomationHandlers) handleListAutomations(ctx context.Context, client homeassistant.Client, _ map[string]any) (*mcp.ToolsCallResult, error) {
	states, err := client.GetStates(ctx)
	if err != nil {
		return errorResult("Error listing automations: %v", err), nil
	}

	var automations []automationView
	for _, e := range states {
		if e.Domain() != "automation" {
			continue
		}
		alias := e.StringAttr("friendly_name")
		if alias == "" {
			alias = e.EntityID
		}
		automations = append(automations, automationView{
			ID:            e.StringAttr("id"),
			EntityID:      e.EntityID,
			State:         e.State,
			Alias:         alias,
			LastTriggered: e.StringAttr("last_triggered"),
		})
	}

	sort.Slice(automations, func(i, j int) bool {
		if automations[i].Alias != automations[j].Alias {
			return automations[i].Alias < automations[j].Alias
		}
		return automations[i].EntityID < automations[j].EntityID
	})

	return jsonResult(map[string]any{
		"count":       len(automations),
		"automations": automations,
	})
}
