package handlers

import (
	"context"

	"github.com/zorak1103/hass-bridge/internal/digest"
	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// SummaryHandlers provides MCP tool handlers for domain and system digests.
type SummaryHandlers struct{}

// NewSummaryHandlers creates a new SummaryHandlers instance.
func NewSummaryHandlers() *SummaryHandlers {
	return &SummaryHandlers{}
}

// RegisterTools registers all summary-related tools with the registry.
func (h *SummaryHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.domainSummaryTool(), h.handleDomainSummary)
	registry.RegisterTool(h.systemOverviewTool(), h.handleSystemOverview)
}

func (h *SummaryHandlers) domainSummaryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "domain_summary",
		Description: "Summarize all entities of one domain: count, state distribution, and sample entities",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Domain to summarize",
			Properties: map[string]mcp.JSONSchema{
				"domain": {
					Type:        "string",
					Description: "The domain to summarize (e.g., light, sensor)",
				},
				"example_limit": {
					Type:        "number",
					Description: "Maximum number of sample entities",
					Default:     digest.SampleLimit,
				},
			},
			Required: []string{"domain"},
		},
	}
}

func (h *SummaryHandlers) systemOverviewTool() mcp.Tool {
	return mcp.Tool{
		Name:        "system_overview",
		Description: "Get a whole-system digest: total entity count, per-domain summaries, and the Home Assistant version",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "No parameters required",
		},
	}
}

func (h *SummaryHandlers) handleDomainSummary(ctx context.Context, client homeassistant.Client, args map[string]any) (*mcp.ToolsCallResult, error) {
	domain := getString(args, "domain")
	if domain == "" {
		return errorResult("domain is required"), nil
	}

	states, err := client.GetStates(ctx)
	if err != nil {
		return errorResult("Error summarizing domain: %v", err), nil
	}

	var records []homeassistant.Entity
	for _, e := range states {
		if e.Domain() == domain {
			records = append(records, e)
		}
	}

	summary := digest.SummarizeN(domain, records, getInt(args, "example_limit", 0))
	return jsonResult(summary)
}

func (h *SummaryHandlers) handleSystemOverview(ctx context.Context, client homeassistant.Client, _ map[string]any) (*mcp.ToolsCallResult, error) {
	states, err := client.GetStates(ctx)
	if err != nil {
		return errorResult("Error building overview: %v", err), nil
	}

	// Version is informational; an unreachable config endpoint does not
	// invalidate the rest of the overview.
	version, err := client.GetVersion(ctx)
	if err != nil {
		version = "unknown"
	}

	return jsonResult(digest.BuildOverview(version, states, nil))
}
