package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/zorak1103/hass-bridge/internal/digest"
	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// entityActions maps the entity_action verbs to Home Assistant services.
var entityActions = map[string]string{
	"on":     "turn_on",
	"off":    "turn_off",
	"toggle": "toggle",
}

// ServiceHandlers provides MCP tool handlers for service invocation.
type ServiceHandlers struct{}

// NewServiceHandlers creates a new ServiceHandlers instance.
func NewServiceHandlers() *ServiceHandlers {
	return &ServiceHandlers{}
}

// RegisterTools registers all service-related tools with the registry.
func (h *ServiceHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.callServiceTool(), h.handleCallService)
	registry.RegisterTool(h.entityActionTool(), h.handleEntityAction)
}

func (h *ServiceHandlers) callServiceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "call_service",
		Description: "Call any Home Assistant service and return the entities it changed",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Service identifier and payload",
			Properties: map[string]mcp.JSONSchema{
				"domain": {
					Type:        "string",
					Description: "Service domain (e.g., light, homeassistant)",
				},
				"service": {
					Type:        "string",
					Description: "Service name (e.g., turn_on)",
				},
				"entity_id": {
					Type:        "string",
					Description: "Target entity ID, merged into the service data",
				},
				"data": {
					Type:        "object",
					Description: "Additional service data",
				},
			},
			Required: []string{"domain", "service"},
		},
	}
}

func (h *ServiceHandlers) entityActionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "entity_action",
		Description: "Turn an entity on or off, or toggle it, using its own domain's service",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Entity ID and action",
			Properties: map[string]mcp.JSONSchema{
				"entity_id": {
					Type:        "string",
					Description: "The entity ID to act on",
				},
				"action": {
					Type:        "string",
					Description: "Action to perform",
					Enum:        []string{"on", "off", "toggle"},
				},
				"params": {
					Type:        "object",
					Description: "Additional service data (e.g., brightness for lights)",
				},
			},
			Required: []string{"entity_id", "action"},
		},
	}
}

func (h *ServiceHandlers) handleCallService(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	domain := getString(args, "domain")
	if domain == "" {
		return errorResult("domain is required"), nil
	}
	service := getString(args, "service")
	if service == "" {
		return errorResult("service is required"), nil
	}

	data := getMap(args, "data")
	if entityID := getString(args, "entity_id"); entityID != "" {
		if data == nil {
			data = make(map[string]any)
		}
		data["entity_id"] = entityID
	}

	changed, err := client.CallService(ctx, domain, service, data)
	if err != nil {
		return serviceError(err), nil
	}

	views := make([]digest.LeanView, 0, len(changed))
	for _, e := range changed {
		views = append(views, digest.Normalize(e, digest.NormalizeOptions{}))
	}

	return jsonResult(map[string]any{
		"service":          domain + "." + service,
		"changed_count":    len(views),
		"changed_entities": views,
	})
}

func (h *ServiceHandlers) handleEntityAction(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	entityID := getString(args, "entity_id")
	if entityID == "" {
		return errorResult("entity_id is required"), nil
	}
	if !strings.Contains(entityID, ".") {
		return errorResult("invalid entity_id: %s", entityID), nil
	}

	action := getString(args, "action")
	service, ok := entityActions[action]
	if !ok {
		return errorResult("invalid action %q: must be one of on, off, toggle", action), nil
	}

	data := getMap(args, "params")
	if data == nil {
		data = make(map[string]any)
	}
	data["entity_id"] = entityID

	domain := entityID[:strings.Index(entityID, ".")]
	changed, err := client.CallService(ctx, domain, service, data)
	if err != nil {
		return serviceError(err), nil
	}

	views := make([]digest.LeanView, 0, len(changed))
	for _, e := range changed {
		views = append(views, digest.Normalize(e, digest.NormalizeOptions{}))
	}

	return jsonResult(map[string]any{
		"entity_id":        entityID,
		"action":           action,
		"service":          domain + "." + service,
		"changed_entities": views,
	})
}

// serviceError maps upstream failures to readable tool errors.
func serviceError(err error) *mcp.ToolsCallResult {
	var validation *homeassistant.ValidationError
	if errors.As(err, &validation) {
		return errorResult("Invalid service call: %v", validation)
	}
	var apiErr *homeassistant.APIError
	if errors.As(err, &apiErr) {
		return errorResult("Home Assistant rejected the service call: %v", apiErr)
	}
	return errorResult("Error calling service: %v", err)
}
