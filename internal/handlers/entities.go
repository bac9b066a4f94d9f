package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/zorak1103/hass-bridge/internal/digest"
	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// defaultListLimit caps list_entities output when no limit is given.
const defaultListLimit = 100

// defaultHistoryHours is the lookback window for get_history.
const defaultHistoryHours = 24

// EntityHandlers provides MCP tool handlers for entity state operations.
type EntityHandlers struct{}

// NewEntityHandlers creates a new EntityHandlers instance.
func NewEntityHandlers() *EntityHandlers {
	return &EntityHandlers{}
}

// RegisterTools registers all entity-related tools with the registry.
func (h *EntityHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.getEntityTool(), h.handleGetEntity)
	registry.RegisterTool(h.listEntitiesTool(), h.handleListEntities)
	registry.RegisterTool(h.getHistoryTool(), h.handleGetHistory)
}

func (h *EntityHandlers) getEntityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_entity",
		Description: "Get the state of a Home Assistant entity, reduced to a compact view by default",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Entity ID and optional output shaping",
			Properties: map[string]mcp.JSONSchema{
				"entity_id": {
					Type:        "string",
					Description: "The entity ID to fetch (e.g., light.living_room)",
				},
				"fields": {
					Type:        "array",
					Description: "Explicit fields to include: state, attributes, attr.<name>, context, last_changed, last_updated",
					Items:       &mcp.JSONSchema{Type: "string"},
				},
				"detailed": {
					Type:        "boolean",
					Description: "Return all attributes and timestamps instead of the lean view",
				},
			},
			Required: []string{"entity_id"},
		},
	}
}

func (h *EntityHandlers) listEntitiesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_entities",
		Description: "List Home Assistant entities as compact views, optionally filtered by domain or a search term",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Optional filters and output shaping",
			Properties: map[string]mcp.JSONSchema{
				"domain": {
					Type:        "string",
					Description: "Only include entities of this domain (e.g., light)",
				},
				"search": {
					Type:        "string",
					Description: "Case-insensitive substring filter on entity_id, friendly_name, and state",
				},
				"limit": {
					Type:        "number",
					Description: "Maximum number of entities to return",
					Default:     defaultListLimit,
				},
				"fields": {
					Type:        "array",
					Description: "Explicit fields to include per entity",
					Items:       &mcp.JSONSchema{Type: "string"},
				},
				"detailed": {
					Type:        "boolean",
					Description: "Return all attributes instead of the lean view",
				},
			},
		},
	}
}

func (h *EntityHandlers) getHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_history",
		Description: "Get the state history of an entity over the past hours",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Entity ID and lookback window",
			Properties: map[string]mcp.JSONSchema{
				"entity_id": {
					Type:        "string",
					Description: "The entity ID to fetch history for",
				},
				"hours": {
					Type:        "number",
					Description: "Lookback window in hours",
					Default:     defaultHistoryHours,
				},
			},
			Required: []string{"entity_id"},
		},
	}
}

func (h *EntityHandlers) handleGetEntity(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	entityID := getString(args, "entity_id")
	if entityID == "" {
		return errorResult("entity_id is required"), nil
	}

	entity, err := client.GetState(ctx, entityID)
	if err != nil {
		var notFound *homeassistant.NotFoundError
		if errors.As(err, &notFound) {
			return errorResult("Entity not found: %s", entityID), nil
		}
		return errorResult("Error getting entity: %v", err), nil
	}

	return jsonResult(digest.Normalize(*entity, normalizeOptions(args)))
}

func (h *EntityHandlers) handleListEntities(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	domain := getString(args, "domain")
	search := strings.ToLower(strings.TrimSpace(getString(args, "search")))
	limit := getInt(args, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	states, err := client.GetStates(ctx)
	if err != nil {
		return errorResult("Error listing entities: %v", err), nil
	}

	opts := normalizeOptions(args)
	views := make([]digest.LeanView, 0, limit)
	for _, e := range states {
		if domain != "" && e.Domain() != domain {
			continue
		}
		if search != "" && !entityMatches(e, search) {
			continue
		}
		views = append(views, digest.Normalize(e, opts))
		if len(views) >= limit {
			break
		}
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].EntityID() < views[j].EntityID()
	})

	return jsonResult(map[string]any{
		"count":    len(views),
		"entities": views,
	})
}

// entityMatches reports whether the lowercase needle occurs in the entity's
// id, friendly name, or state.
func entityMatches(e homeassistant.Entity, needle string) bool {
	if strings.Contains(strings.ToLower(e.EntityID), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.StringAttr("friendly_name")), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(e.State), needle)
}

func (h *EntityHandlers) handleGetHistory(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	entityID := getString(args, "entity_id")
	if entityID == "" {
		return errorResult("entity_id is required"), nil
	}

	hours := getInt(args, "hours", defaultHistoryHours)
	if hours <= 0 {
		hours = defaultHistoryHours
	}

	start := time.Now().Add(-time.Duration(hours) * time.Hour)
	entries, err := client.GetHistory(ctx, entityID, start)
	if err != nil {
		var notFound *homeassistant.NotFoundError
		if errors.As(err, &notFound) {
			return errorResult("Entity not found: %s", entityID), nil
		}
		return errorResult("Error getting history: %v", err), nil
	}

	result := map[string]any{
		"entity_id": entityID,
		"hours":     hours,
		"count":     len(entries),
		"history":   entries,
	}
	if len(entries) > 0 {
		result["first_changed"] = entries[0].LastChanged.Format(time.RFC3339)
		result["last_changed"] = entries[len(entries)-1].LastChanged.Format(time.RFC3339)
	}

	return jsonResult(result)
}
