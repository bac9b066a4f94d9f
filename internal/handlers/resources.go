package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/zorak1103/hass-bridge/internal/digest"
	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// ResourceHandlers provides MCP resource handlers exposing entity state
// through templated hass:// URIs.
type ResourceHandlers struct{}

// NewResourceHandlers creates a new ResourceHandlers instance.
func NewResourceHandlers() *ResourceHandlers {
	return &ResourceHandlers{}
}

// RegisterResources registers all hass:// resources with the registry.
func (h *ResourceHandlers) RegisterResources(registry *mcp.Registry) {
	registry.RegisterResource(mcp.Resource{
		URI:         "hass://entities/{entity_id}",
		Name:        "Entity state",
		Description: "Compact state view of one entity",
		MimeType:    "application/json",
	}, h.handleEntityResource)

	registry.RegisterResource(mcp.Resource{
		URI:         "hass://entities/domain/{domain}",
		Name:        "Domain entities",
		Description: "Compact state views of all entities in one domain",
		MimeType:    "application/json",
	}, h.handleDomainResource)

	registry.RegisterResource(mcp.Resource{
		URI:         "hass://search/{query}/{limit}",
		Name:        "Entity search",
		Description: "Ranked entity search results",
		MimeType:    "application/json",
	}, h.handleSearchResource)
}

// jsonResource marshals v into a single JSON resource content block.
func jsonResource(uri string, v any) (*mcp.ResourcesReadResult, error) {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("formatting resource %s: %w", uri, err)
	}
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{{
			URI:      uri,
			MimeType: "application/json",
			Text:     string(text),
		}},
	}, nil
}

func (h *ResourceHandlers) handleEntityResource(ctx context.Context, client homeassistant.Client, uri string, params map[string]string) (*mcp.ResourcesReadResult, error) {
	entityID := params["entity_id"]
	entity, err := client.GetState(ctx, entityID)
	if err != nil {
		var notFound *homeassistant.NotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("entity not found: %s", entityID)
		}
		return nil, fmt.Errorf("reading entity %s: %w", entityID, err)
	}
	return jsonResource(uri, digest.Normalize(*entity, digest.NormalizeOptions{}))
}

func (h *ResourceHandlers) handleDomainResource(ctx context.Context, client homeassistant.Client, uri string, params map[string]string) (*mcp.ResourcesReadResult, error) {
	domain := params["domain"]
	states, err := client.GetStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entities for domain %s: %w", domain, err)
	}

	var views []digest.LeanView
	for _, e := range states {
		if e.Domain() == domain {
			views = append(views, digest.Normalize(e, digest.NormalizeOptions{}))
		}
	}
	return jsonResource(uri, map[string]any{
		"domain":   domain,
		"count":    len(views),
		"entities": views,
	})
}

func (h *ResourceHandlers) handleSearchResource(ctx context.Context, client homeassistant.Client, uri string, params map[string]string) (*mcp.ResourcesReadResult, error) {
	query := params["query"]
	limit, err := strconv.Atoi(params["limit"])
	if err != nil || limit <= 0 {
		limit = digest.DefaultSearchLimit
	}

	states, err := client.GetStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}

	results := digest.Search(states, digest.Query{Text: query, Limit: limit})
	return jsonResource(uri, map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}
