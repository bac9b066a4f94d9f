package handlers

import "github.com/zorak1103/hass-bridge/internal/mcp"

// RegisterEntityTools registers all entity-related tools with the registry.
func RegisterEntityTools(registry *mcp.Registry) {
	h := NewEntityHandlers()
	h.RegisterTools(registry)
}

// RegisterSearchTools registers all search-related tools with the registry.
func RegisterSearchTools(registry *mcp.Registry) {
	h := NewSearchHandlers()
	h.RegisterTools(registry)
}

// RegisterSummaryTools registers all summary-related tools with the registry.
func RegisterSummaryTools(registry *mcp.Registry) {
	h := NewSummaryHandlers()
	h.RegisterTools(registry)
}

// RegisterSystemTools registers all system-related tools with the registry.
func RegisterSystemTools(registry *mcp.Registry) {
	h := NewSystemHandlers()
	h.RegisterTools(registry)
}

// RegisterServiceTools registers all service-invocation tools with the registry.
func RegisterServiceTools(registry *mcp.Registry) {
	h := NewServiceHandlers()
	h.RegisterTools(registry)
}

// RegisterAutomationTools registers all automation-related tools with the registry.
func RegisterAutomationTools(registry *mcp.Registry) {
	h := NewAutomationHandlers()
	h.RegisterTools(registry)
}

// RegisterAreaTools registers all area-related tools with the registry.
func RegisterAreaTools(registry *mcp.Registry) {
	h := NewAreaHandlers()
	h.RegisterTools(registry)
}

// RegisterAllTools registers every tool handler with the registry.
func RegisterAllTools(registry *mcp.Registry) {
	RegisterEntityTools(registry)
	RegisterSearchTools(registry)
	RegisterSummaryTools(registry)
	RegisterSystemTools(registry)
	RegisterServiceTools(registry)
	RegisterAutomationTools(registry)
	RegisterAreaTools(registry)
}

// RegisterAllResources registers every resource handler with the registry.
func RegisterAllResources(registry *mcp.Registry) {
	h := NewResourceHandlers()
	h.RegisterResources(registry)
}

// RegisterAllPrompts registers every prompt handler with the registry.
func RegisterAllPrompts(registry *mcp.Registry) {
	h := NewPromptHandlers()
	h.RegisterPrompts(registry)
}

// RegisterAll registers every tool, resource, and prompt handler.
func RegisterAll(registry *mcp.Registry) {
	RegisterAllTools(registry)
	RegisterAllResources(registry)
	RegisterAllPrompts(registry)
}
