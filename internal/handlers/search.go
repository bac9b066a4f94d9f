package handlers

import (
	"context"

	"github.com/zorak1103/hass-bridge/internal/digest"
	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// SearchHandlers provides the MCP tool handler for entity search.
type SearchHandlers struct{}

// NewSearchHandlers creates a new SearchHandlers instance.
func NewSearchHandlers() *SearchHandlers {
	return &SearchHandlers{}
}

// RegisterTools registers all search-related tools with the registry.
func (h *SearchHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.searchEntitiesTool(), h.handleSearchEntities)
}

func (h *SearchHandlers) searchEntitiesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_entities",
		Description: "Search entities by name, id, or state and return ranked matches with scores",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Search query and optional filters",
			Properties: map[string]mcp.JSONSchema{
				"query": {
					Type:        "string",
					Description: "Search text matched against entity_id, friendly_name, and state",
				},
				"domain": {
					Type:        "string",
					Description: "Only match entities of this domain",
				},
				"state": {
					Type:        "string",
					Description: "Only match entities currently in this exact state",
				},
				"limit": {
					Type:        "number",
					Description: "Maximum number of results",
					Default:     digest.DefaultSearchLimit,
				},
			},
			Required: []string{"query"},
		},
	}
}

func (h *SearchHandlers) handleSearchEntities(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	query := getString(args, "query")
	if query == "" {
		return errorResult("query is required"), nil
	}

	states, err := client.GetStates(ctx)
	if err != nil {
		return errorResult("Error searching entities: %v", err), nil
	}

	results := digest.Search(states, digest.Query{
		Text:   query,
		Domain: getString(args, "domain"),
		State:  getString(args, "state"),
		Limit:  getInt(args, "limit", 0),
	})

	return jsonResult(map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}
