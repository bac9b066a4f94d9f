package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
)

func TestListAreasToolSchema(t *testing.T) {
	t.Parallel()

	h := NewAreaHandlers()
	verifyToolSchema(t, h.listAreasTool(), "list_areas", nil, nil)
}

func TestHandleListAreas(t *testing.T) {
	t.Parallel()

	h := NewAreaHandlers()
	tests := []handlerTestCase{
		{
			name: "areas listed",
			args: map[string]any{},
			setupMock: func(m *mockClient) {
				m.GetAreaRegistryFn = func(_ context.Context) ([]homeassistant.AreaRegistryEntry, error) {
					return []homeassistant.AreaRegistryEntry{
						{AreaID: "kitchen", Name: "Kitchen"},
						{AreaID: "living_room", Name: "Living Room"},
					}, nil
				}
			},
			wantContains: []string{`"count": 2`, "Kitchen", "Living Room"},
		},
		{
			name: "no areas",
			args: map[string]any{},
			setupMock: func(m *mockClient) {
				m.GetAreaRegistryFn = func(_ context.Context) ([]homeassistant.AreaRegistryEntry, error) {
					return nil, nil
				}
			},
			wantContains: []string{`"count": 0`},
		},
		{
			name: "websocket failure",
			args: map[string]any{},
			setupMock: func(m *mockClient) {
				m.GetAreaRegistryFn = func(_ context.Context) ([]homeassistant.AreaRegistryEntry, error) {
					return nil, errors.New("websocket: connection reset")
				}
			},
			wantError:    true,
			wantContains: []string{"Error listing areas"},
		},
	}

	runHandlerTestCases(t, tests, h.handleListAreas)
}

func TestHandleListAreas_SortedByName(t *testing.T) {
	t.Parallel()

	h := NewAreaHandlers()
	client := &mockClient{
		GetAreaRegistryFn: func(_ context.Context) ([]homeassistant.AreaRegistryEntry, error) {
			return []homeassistant.AreaRegistryEntry{
				{AreaID: "z", Name: "Zulu"},
				{AreaID: "a", Name: "Attic"},
			}, nil
		},
	}

	result, err := h.handleListAreas(context.Background(), client, nil)
	if err != nil {
		t.Fatalf("handleListAreas() error = %v", err)
	}

	var payload struct {
		Areas []homeassistant.AreaRegistryEntry `json:"areas"`
	}
	if err := json.Unmarshal([]byte(result.Content[0].Text), &payload); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(payload.Areas) != 2 || payload.Areas[0].Name != "Attic" {
		t.Errorf("areas = %+v, want sorted by name", payload.Areas)
	}
}
