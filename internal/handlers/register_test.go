package handlers

import (
	"testing"

	"github.com/zorak1103/hass-bridge/internal/mcp"
)

func TestRegisterAll(t *testing.T) {
	t.Parallel()

	registry := mcp.NewRegistry()
	RegisterAll(registry)

	if got := registry.ToolCount(); got != 13 {
		t.Errorf("ToolCount() = %d, want 13", got)
	}
	if got := registry.ResourceCount(); got != 3 {
		t.Errorf("ResourceCount() = %d, want 3", got)
	}
	if got := registry.PromptCount(); got != 1 {
		t.Errorf("PromptCount() = %d, want 1", got)
	}

	wantTools := []string{
		"get_entity",
		"list_entities",
		"get_history",
		"search_entities",
		"domain_summary",
		"system_overview",
		"get_version",
		"restart_ha",
		"get_error_log",
		"call_service",
		"entity_action",
		"list_automations",
		"list_areas",
	}
	for _, name := range wantTools {
		if _, ok := registry.GetHandler(name); !ok {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestAllToolSchemasAreObjects(t *testing.T) {
	t.Parallel()

	registry := mcp.NewRegistry()
	RegisterAllTools(registry)

	for _, tool := range registry.ListTools() {
		if tool.InputSchema.Type != testSchemaTypeObject {
			t.Errorf("tool %q schema type = %q, want %q", tool.Name, tool.InputSchema.Type, testSchemaTypeObject)
		}
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
	}
}
