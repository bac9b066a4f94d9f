package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
)

func TestSearchEntitiesToolSchema(t *testing.T) {
	t.Parallel()

	h := NewSearchHandlers()
	verifyToolSchema(t, h.searchEntitiesTool(), "search_entities",
		[]string{"query"}, []string{"domain", "state", "limit"})
}

func TestHandleSearchEntities(t *testing.T) {
	t.Parallel()

	h := NewSearchHandlers()
	fixtures := []homeassistant.Entity{
		testEntity("light.kitchen", "on"),
		testEntity("light.hall", "off"),
		testEntity("sensor.kitchen_temp", "21.5"),
	}

	tests := []handlerTestCase{
		{
			name: "ranked matches",
			args: map[string]any{"query": "kitchen"},
			setupMock: func(m *mockClient) {
				m.GetStatesFn = func(_ context.Context) ([]homeassistant.Entity, error) {
					return fixtures, nil
				}
			},
			wantContains:    []string{`"query": "kitchen"`, `"count": 2`, "match_score", "light.kitchen", "sensor.kitchen_temp"},
			wantNotContains: []string{"light.hall"},
		},
		{
			name: "domain filter",
			args: map[string]any{"query": "kitchen", "domain": "sensor"},
			setupMock: func(m *mockClient) {
				m.GetStatesFn = func(_ context.Context) ([]homeassistant.Entity, error) {
					return fixtures, nil
				}
			},
			wantContains:    []string{`"count": 1`, "sensor.kitchen_temp"},
			wantNotContains: []string{"light.kitchen"},
		},
		{
			name: "state filter",
			args: map[string]any{"query": "light", "state": "off"},
			setupMock: func(m *mockClient) {
				m.GetStatesFn = func(_ context.Context) ([]homeassistant.Entity, error) {
					return fixtures, nil
				}
			},
			wantContains:    []string{`"count": 1`, "light.hall"},
			wantNotContains: []string{"light.kitchen"},
		},
		{
			name:         "missing query",
			args:         map[string]any{},
			wantError:    true,
			wantContains: []string{"query is required"},
		},
		{
			name: "upstream failure",
			args: map[string]any{"query": "kitchen"},
			setupMock: func(m *mockClient) {
				m.GetStatesFn = func(_ context.Context) ([]homeassistant.Entity, error) {
					return nil, &homeassistant.APIError{StatusCode: 500, Body: "boom"}
				}
			},
			wantError:    true,
			wantContains: []string{"Error searching entities"},
		},
	}

	runHandlerTestCases(t, tests, h.handleSearchEntities)
}

func TestHandleSearchEntities_ScoreOrdering(t *testing.T) {
	t.Parallel()

	h := NewSearchHandlers()
	client := &mockClient{
		GetStatesFn: func(_ context.Context) ([]homeassistant.Entity, error) {
			return []homeassistant.Entity{
				testEntity("sensor.kitchen_temp", "21.5"),
				testEntity("light.kitchen", "on"),
			}, nil
		},
	}

	result, err := h.handleSearchEntities(context.Background(), client, map[string]any{
		"query": "light.kitchen",
	})
	if err != nil {
		t.Fatalf("handleSearchEntities() error = %v", err)
	}

	var payload struct {
		Results []struct {
			Entity map[string]any `json:"entity"`
			Score  int            `json:"match_score"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(result.Content[0].Text), &payload); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(payload.Results) == 0 {
		t.Fatal("no results")
	}
	if payload.Results[0].Entity["entity_id"] != "light.kitchen" {
		t.Errorf("top result = %v, want exact id match first", payload.Results[0].Entity["entity_id"])
	}
	for i := 1; i < len(payload.Results); i++ {
		if payload.Results[i].Score > payload.Results[i-1].Score {
			t.Errorf("results not sorted by score: %d > %d at index %d",
				payload.Results[i].Score, payload.Results[i-1].Score, i)
		}
	}
}
