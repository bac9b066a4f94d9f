package handlers

import (
	"context"
	"strings"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// PromptHandlers provides MCP prompts for guided Home Assistant workflows.
type PromptHandlers struct{}

// NewPromptHandlers creates a new PromptHandlers instance.
func NewPromptHandlers() *PromptHandlers {
	return &PromptHandlers{}
}

// RegisterPrompts registers all prompts with the registry.
func (h *PromptHandlers) RegisterPrompts(registry *mcp.Registry) {
	registry.RegisterPrompt(mcp.Prompt{
		Name:        "create_automation",
		Description: "Guide the design of a Home Assistant automation from a stated purpose",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "purpose",
				Description: "What the automation should accomplish",
				Required:    true,
			},
			{
				Name:        "available_entities",
				Description: "Comma-separated entity IDs to consider (optional)",
			},
		},
	}, h.handleCreateAutomation)
}

func (h *PromptHandlers) handleCreateAutomation(_ context.Context, _ homeassistant.Client, args map[string]string) (*mcp.PromptsGetResult, error) {
	purpose := args["purpose"]

	var sb strings.Builder
	sb.WriteString("I want to create a Home Assistant automation for this purpose: ")
	sb.WriteString(purpose)
	sb.WriteString("\n\n")

	if entities := strings.TrimSpace(args["available_entities"]); entities != "" {
		sb.WriteString("These entities are available:\n")
		for _, id := range strings.Split(entities, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				sb.WriteString("- ")
				sb.WriteString(id)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Please help me design it step by step:\n")
	sb.WriteString("1. Identify the trigger: what event or state change should start the automation?\n")
	sb.WriteString("2. Define conditions: are there constraints on when it should run (time, presence, sun position)?\n")
	sb.WriteString("3. Choose actions: which services should be called, on which entities, with what data?\n")
	sb.WriteString("4. Consider edge cases: what happens when entities are unavailable or the trigger fires repeatedly?\n")
	sb.WriteString("5. Produce the final automation as Home Assistant YAML with a descriptive alias.\n\n")
	sb.WriteString("If entity details are needed, use the get_entity and list_entities tools before deciding.")

	return &mcp.PromptsGetResult{
		Description: "Guided automation design for: " + purpose,
		Messages: []mcp.PromptMessage{
			{
				Role:    "user",
				Content: mcp.NewTextContent(sb.String()),
			},
		},
	}, nil
}
