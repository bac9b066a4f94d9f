package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
	"github.com/zorak1103/hass-bridge/internal/mcp"
)

// mockClient implements homeassistant.Client with configurable hooks.
// A nil hook returns a sensible zero default.
type mockClient struct {
	CheckAPIFn          func(ctx context.Context) (string, error)
	GetVersionFn        func(ctx context.Context) (string, error)
	GetStatesFn         func(ctx context.Context) ([]homeassistant.Entity, error)
	GetStateFn          func(ctx context.Context, entityID string) (*homeassistant.Entity, error)
	CallServiceFn       func(ctx context.Context, domain, service string, data map[string]any) ([]homeassistant.Entity, error)
	GetHistoryFn        func(ctx context.Context, entityID string, start time.Time) ([]homeassistant.HistoryEntry, error)
	GetErrorLogFn       func(ctx context.Context) (string, error)
	GetEntityRegistryFn func(ctx context.Context) ([]homeassistant.EntityRegistryEntry, error)
	GetAreaRegistryFn   func(ctx context.Context) ([]homeassistant.AreaRegistryEntry, error)
}

func (m *mockClient) CheckAPI(ctx context.Context) (string, error) {
	if m.CheckAPIFn != nil {
		return m.CheckAPIFn(ctx)
	}
	return "API running.", nil
}

func (m *mockClient) GetVersion(ctx context.Context) (string, error) {
	if m.GetVersionFn != nil {
		return m.GetVersionFn(ctx)
	}
	return "2026.1.3", nil
}

func (m *mockClient) GetStates(ctx context.Context) ([]homeassistant.Entity, error) {
	if m.GetStatesFn != nil {
		return m.GetStatesFn(ctx)
	}
	return []homeassistant.Entity{}, nil
}

func (m *mockClient) GetState(ctx context.Context, entityID string) (*homeassistant.Entity, error) {
	if m.GetStateFn != nil {
		return m.GetStateFn(ctx, entityID)
	}
	return &homeassistant.Entity{EntityID: entityID, State: "unknown"}, nil
}

func (m *mockClient) CallService(ctx context.Context, domain, service string, data map[string]any) ([]homeassistant.Entity, error) {
	if m.CallServiceFn != nil {
		return m.CallServiceFn(ctx, domain, service, data)
	}
	return []homeassistant.Entity{}, nil
}

func (m *mockClient) GetHistory(ctx context.Context, entityID string, start time.Time) ([]homeassistant.HistoryEntry, error) {
	if m.GetHistoryFn != nil {
		return m.GetHistoryFn(ctx, entityID, start)
	}
	return []homeassistant.HistoryEntry{}, nil
}

func (m *mockClient) GetErrorLog(ctx context.Context) (string, error) {
	if m.GetErrorLogFn != nil {
		return m.GetErrorLogFn(ctx)
	}
	return "", nil
}

func (m *mockClient) GetEntityRegistry(ctx context.Context) ([]homeassistant.EntityRegistryEntry, error) {
	if m.GetEntityRegistryFn != nil {
		return m.GetEntityRegistryFn(ctx)
	}
	return []homeassistant.EntityRegistryEntry{}, nil
}

func (m *mockClient) GetAreaRegistry(ctx context.Context) ([]homeassistant.AreaRegistryEntry, error) {
	if m.GetAreaRegistryFn != nil {
		return m.GetAreaRegistryFn(ctx)
	}
	return []homeassistant.AreaRegistryEntry{}, nil
}

// handlerTestCase represents a standard test case for handler functions.
type handlerTestCase struct {
	name            string
	args            map[string]any
	setupMock       func(*mockClient)
	wantError       bool
	wantContains    []string
	wantNotContains []string
}

// runHandlerTestCases executes a set of test cases for a handler function.
func runHandlerTestCases(
	t *testing.T,
	tests []handlerTestCase,
	handlerFunc func(context.Context, homeassistant.Client, map[string]any) (*mcp.ToolsCallResult, error),
) {
	t.Helper()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &mockClient{}
			if tt.setupMock != nil {
				tt.setupMock(client)
			}

			result, err := handlerFunc(context.Background(), client, tt.args)
			if err != nil {
				t.Fatalf("handler returned unexpected error: %v", err)
			}
			if result == nil {
				t.Fatal("handler returned nil result")
			}
			if result.IsError != tt.wantError {
				t.Errorf("IsError = %v, want %v", result.IsError, tt.wantError)
			}
			if len(result.Content) == 0 {
				t.Fatal("handler returned empty content")
			}

			content := result.Content[0].Text
			for _, expected := range tt.wantContains {
				if !strings.Contains(content, expected) {
					t.Errorf("content missing %q\nGot: %s", expected, content)
				}
			}
			for _, unexpected := range tt.wantNotContains {
				if strings.Contains(content, unexpected) {
					t.Errorf("content should not contain %q\nGot: %s", unexpected, content)
				}
			}
		})
	}
}

// testSchemaTypeObject is the expected JSON schema type for all tools.
const testSchemaTypeObject = "object"

// verifyToolSchema checks a tool's name, description, and parameters.
func verifyToolSchema(t *testing.T, tool mcp.Tool, name string, required, optional []string) {
	t.Helper()

	if tool.Name != name {
		t.Errorf("tool.Name = %q, want %q", tool.Name, name)
	}
	if tool.Description == "" {
		t.Error("tool.Description is empty")
	}
	if tool.InputSchema.Type != testSchemaTypeObject {
		t.Errorf("InputSchema.Type = %q, want %q", tool.InputSchema.Type, testSchemaTypeObject)
	}

	requiredMap := make(map[string]bool)
	for _, r := range tool.InputSchema.Required {
		requiredMap[r] = true
	}
	for _, param := range required {
		if !requiredMap[param] {
			t.Errorf("parameter %q not in schema.Required", param)
		}
	}
	for _, param := range append(append([]string{}, required...), optional...) {
		if _, ok := tool.InputSchema.Properties[param]; !ok {
			t.Errorf("property %q missing from schema.Properties", param)
		}
	}
}

// testEntity creates a standard test entity.
func testEntity(entityID, state string) homeassistant.Entity {
	return homeassistant.Entity{
		EntityID: entityID,
		State:    state,
		Attributes: map[string]any{
			"friendly_name": "Test " + entityID,
		},
	}
}
