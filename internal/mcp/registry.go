// Package mcp implements the Model Context Protocol (MCP) server.
package mcp

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/logging"
)

// ToolHandler is a function that handles a tool call.
type ToolHandler func(ctx context.Context, client homeassistant.Client, args map[string]any) (*ToolsCallResult, error)

// ResourceHandler is a function that handles a resource read. For templated
// resources, params holds the values captured from {placeholder} segments.
type ResourceHandler func(ctx context.Context, client homeassistant.Client, uri string, params map[string]string) (*ResourcesReadResult, error)

// PromptHandler renders a prompt with the given arguments.
type PromptHandler func(ctx context.Context, client homeassistant.Client, args map[string]string) (*PromptsGetResult, error)

// toolEntry holds a tool definition and its handler.
type toolEntry struct {
	tool    Tool
	handler ToolHandler
}

// resourceEntry holds a resource definition and its handler.
type resourceEntry struct {
	resource Resource
	handler  ResourceHandler
}

// promptEntry holds a prompt definition and its handler.
type promptEntry struct {
	prompt  Prompt
	handler PromptHandler
}

// Registry manages MCP tools, resources, and prompts.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]toolEntry
	resources map[string]resourceEntry
	templates []resourceEntry
	prompts   map[string]promptEntry
}

// NewRegistry creates a new registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]toolEntry),
		resources: make(map[string]resourceEntry),
		prompts:   make(map[string]promptEntry),
	}
}

// RegisterTool registers a tool with its handler.
func (r *Registry) RegisterTool(tool Tool, handler ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = toolEntry{
		tool:    tool,
		handler: handler,
	}
}

// RegisterResource registers a resource with its handler. A URI containing
// {placeholder} segments is registered as a template and matched
// segment-wise against read requests.
func (r *Registry) RegisterResource(resource Resource, handler ResourceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := resourceEntry{resource: resource, handler: handler}
	if strings.Contains(resource.URI, "{") {
		r.templates = append(r.templates, entry)
		return
	}
	r.resources[resource.URI] = entry
}

// RegisterPrompt registers a prompt with its handler.
func (r *Registry) RegisterPrompt(prompt Prompt, handler PromptHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[prompt.Name] = promptEntry{
		prompt:  prompt,
		handler: handler,
	}
}

// ListTools returns all registered tools.
func (r *Registry) ListTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, entry := range r.tools {
		tools = append(tools, entry.tool)
	}
	return tools
}

// ListResources returns all registered resources, templates included.
func (r *Registry) ListResources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources := make([]Resource, 0, len(r.resources)+len(r.templates))
	for _, entry := range r.resources {
		resources = append(resources, entry.resource)
	}
	for _, entry := range r.templates {
		resources = append(resources, entry.resource)
	}
	return resources
}

// ListPrompts returns all registered prompts.
func (r *Registry) ListPrompts() []Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prompts := make([]Prompt, 0, len(r.prompts))
	for _, entry := range r.prompts {
		prompts = append(prompts, entry.prompt)
	}
	return prompts
}

// GetHandler returns the handler for a tool by name.
func (r *Registry) GetHandler(name string) (ToolHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.tools[name]
	if !exists {
		return nil, false
	}
	return entry.handler, true
}

// ResolveResource finds the handler for a resource URI. Exact registrations
// win; otherwise templates are tried in registration order and the captured
// placeholder values are returned.
func (r *Registry) ResolveResource(uri string) (ResourceHandler, map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.resources[uri]; exists {
		return entry.handler, nil, true
	}
	for _, entry := range r.templates {
		if params, ok := matchTemplate(entry.resource.URI, uri); ok {
			return entry.handler, params, true
		}
	}
	return nil, nil, false
}

// GetPromptHandler returns the handler for a prompt by name.
func (r *Registry) GetPromptHandler(name string) (PromptHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.prompts[name]
	if !exists {
		return nil, false
	}
	return entry.handler, true
}

// GetTool returns a tool by name.
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.tools[name]
	if !exists {
		return Tool{}, false
	}
	return entry.tool, true
}

// ToolCount returns the number of registered tools.
func (r *Registry) ToolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ResourceCount returns the number of registered resources and templates.
func (r *Registry) ResourceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources) + len(r.templates)
}

// PromptCount returns the number of registered prompts.
func (r *Registry) PromptCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}

// matchTemplate matches a concrete URI against a template segment-wise.
// A "{name}" segment captures the corresponding URI segment.
func matchTemplate(template, uri string) (map[string]string, bool) {
	tSegs := strings.Split(template, "/")
	uSegs := strings.Split(uri, "/")
	if len(tSegs) != len(uSegs) {
		return nil, false
	}

	params := make(map[string]string)
	for i, tSeg := range tSegs {
		if strings.HasPrefix(tSeg, "{") && strings.HasSuffix(tSeg, "}") {
			name := tSeg[1 : len(tSeg)-1]
			if uSegs[i] == "" {
				return nil, false
			}
			params[name] = uSegs[i]
			continue
		}
		if tSeg != uSegs[i] {
			return nil, false
		}
	}
	return params, true
}

// maxDescriptionLen is the maximum length for tool descriptions in log output.
const maxDescriptionLen = 80

// LogRegisteredTools logs all registered tools, resources, and prompts at
// Debug level.
func (r *Registry) LogRegisteredTools(logger *logging.Logger) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if logger == nil || !logger.IsDebugEnabled() {
		return
	}

	toolNames := make([]string, 0, len(r.tools))
	for name := range r.tools {
		toolNames = append(toolNames, name)
	}
	sort.Strings(toolNames)

	logger.Debug("Registered MCP tools:")
	for _, name := range toolNames {
		entry := r.tools[name]
		logger.Debug("  - "+name, "description", truncateDescription(entry.tool.Description, maxDescriptionLen))
	}

	if len(r.resources) > 0 || len(r.templates) > 0 {
		uris := make([]string, 0, len(r.resources)+len(r.templates))
		for uri := range r.resources {
			uris = append(uris, uri)
		}
		for _, entry := range r.templates {
			uris = append(uris, entry.resource.URI)
		}
		sort.Strings(uris)

		logger.Debug("Registered MCP resources:")
		for _, uri := range uris {
			logger.Debug("  - " + uri)
		}
	}

	if len(r.prompts) > 0 {
		names := make([]string, 0, len(r.prompts))
		for name := range r.prompts {
			names = append(names, name)
		}
		sort.Strings(names)

		logger.Debug("Registered MCP prompts:")
		for _, name := range names {
			logger.Debug("  - " + name)
		}
	}
}

// truncateDescription truncates a description to maxLen characters.
func truncateDescription(desc string, maxLen int) string {
	if len(desc) <= maxLen {
		return desc
	}
	return desc[:maxLen-3] + "..."
}
