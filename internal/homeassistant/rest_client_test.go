package homeassistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewRESTClient_BaseURLNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "http://ha.local:8123", "http://ha.local:8123"},
		{"trailing slash", "http://ha.local:8123/", "http://ha.local:8123"},
		{"api suffix", "http://ha.local:8123/api", "http://ha.local:8123"},
		{"api suffix with slash", "http://ha.local:8123/api/", "http://ha.local:8123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := NewRESTClient(tt.in, "token")
			if client.baseURL != tt.want {
				t.Errorf("baseURL = %q, want %q", client.baseURL, tt.want)
			}
		})
	}
}

func TestRESTClient_CheckAPI(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/" {
			t.Errorf("path = %q, want /api/", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "API running."})
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "secret")
	msg, err := client.CheckAPI(context.Background())
	if err != nil {
		t.Fatalf("CheckAPI() error = %v", err)
	}
	if msg != "API running." {
		t.Errorf("CheckAPI() = %q, want %q", msg, "API running.")
	}
}

func TestRESTClient_GetVersion(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/config" {
			t.Errorf("path = %q, want /api/config", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"version": "2026.1.3", "location_name": "Home"})
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "token")
	version, err := client.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion() error = %v", err)
	}
	if version != "2026.1.3" {
		t.Errorf("GetVersion() = %q, want %q", version, "2026.1.3")
	}
}

func TestRESTClient_GetStates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/states" {
			t.Errorf("path = %q, want /api/states", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"entity_id": "light.kitchen", "state": "on", "attributes": {"friendly_name": "Kitchen"}},
			{"entity_id": "switch.fan", "state": "off", "attributes": {}}
		]`))
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "token")
	states, err := client.GetStates(context.Background())
	if err != nil {
		t.Fatalf("GetStates() error = %v", err)
	}

	if len(states) != 2 {
		t.Fatalf("len(states) = %d, want 2", len(states))
	}
	if states[0].EntityID != "light.kitchen" || states[0].State != "on" {
		t.Errorf("states[0] = %+v, want light.kitchen on", states[0])
	}
	if states[0].StringAttr("friendly_name") != "Kitchen" {
		t.Errorf("friendly_name = %q, want Kitchen", states[0].StringAttr("friendly_name"))
	}
}

func TestRESTClient_GetState(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/states/light.kitchen" {
				t.Errorf("path = %q, want /api/states/light.kitchen", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{"entity_id": "light.kitchen", "state": "on"}`))
		}))
		defer server.Close()

		client := NewRESTClient(server.URL, "token")
		entity, err := client.GetState(context.Background(), "light.kitchen")
		if err != nil {
			t.Fatalf("GetState() error = %v", err)
		}
		if entity.EntityID != "light.kitchen" {
			t.Errorf("EntityID = %q, want light.kitchen", entity.EntityID)
		}
	})

	t.Run("missing entity maps 404 to NotFoundError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewRESTClient(server.URL, "token")
		_, err := client.GetState(context.Background(), "light.ghost")

		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("error = %v, want *NotFoundError", err)
		}
		if notFound.EntityID != "light.ghost" {
			t.Errorf("NotFoundError.EntityID = %q, want light.ghost", notFound.EntityID)
		}
	})

	t.Run("malformed id is a ValidationError before any request", func(t *testing.T) {
		t.Parallel()

		client := NewRESTClient("http://unused.invalid", "token")
		_, err := client.GetState(context.Background(), "nodot")

		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("error = %v, want *ValidationError", err)
		}
		if validation.Field != "entity_id" {
			t.Errorf("ValidationError.Field = %q, want entity_id", validation.Field)
		}
	})
}

func TestRESTClient_CallService(t *testing.T) {
	t.Parallel()

	t.Run("returns changed entities", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %q, want POST", r.Method)
			}
			if r.URL.Path != "/api/services/light/turn_on" {
				t.Errorf("path = %q, want /api/services/light/turn_on", r.URL.Path)
			}

			var data map[string]any
			if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
				t.Errorf("decoding request body: %v", err)
			}
			if data["entity_id"] != "light.kitchen" {
				t.Errorf("entity_id = %v, want light.kitchen", data["entity_id"])
			}

			_, _ = w.Write([]byte(`[{"entity_id": "light.kitchen", "state": "on"}]`))
		}))
		defer server.Close()

		client := NewRESTClient(server.URL, "token")
		changed, err := client.CallService(context.Background(), "light", "turn_on", map[string]any{"entity_id": "light.kitchen"})
		if err != nil {
			t.Fatalf("CallService() error = %v", err)
		}
		if len(changed) != 1 || changed[0].EntityID != "light.kitchen" {
			t.Errorf("changed = %+v, want [light.kitchen]", changed)
		}
	})

	t.Run("tolerates non-list response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"result": "ok"}`))
		}))
		defer server.Close()

		client := NewRESTClient(server.URL, "token")
		changed, err := client.CallService(context.Background(), "homeassistant", "restart", nil)
		if err != nil {
			t.Fatalf("CallService() error = %v", err)
		}
		if len(changed) != 0 {
			t.Errorf("changed = %+v, want empty", changed)
		}
	})

	t.Run("rejects malformed domain and service", func(t *testing.T) {
		t.Parallel()

		client := NewRESTClient("http://unused.invalid", "token")

		var validation *ValidationError
		if _, err := client.CallService(context.Background(), "light.kitchen", "turn_on", nil); !errors.As(err, &validation) {
			t.Errorf("dotted domain: error = %v, want *ValidationError", err)
		}
		if _, err := client.CallService(context.Background(), "light", "", nil); !errors.As(err, &validation) {
			t.Errorf("empty service: error = %v, want *ValidationError", err)
		}
	})
}

func TestRESTClient_GetHistory(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter_entity_id"); got != "sensor.temp" {
			t.Errorf("filter_entity_id = %q, want sensor.temp", got)
		}
		_, _ = w.Write([]byte(`[[
			{"entity_id": "sensor.temp", "state": "20.1", "last_changed": "2026-01-02T13:00:00Z"},
			{"entity_id": "sensor.temp", "state": "21.5", "last_changed": "2026-01-02T14:00:00Z"}
		]]`))
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "token")
	entries, err := client.GetHistory(context.Background(), "sensor.temp", start)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}

	wantStates := []string{"20.1", "21.5"}
	gotStates := make([]string, len(entries))
	for i, e := range entries {
		gotStates[i] = e.State
	}
	if diff := cmp.Diff(wantStates, gotStates); diff != "" {
		t.Errorf("history states mismatch (-want +got):\n%s", diff)
	}
}

func TestRESTClient_GetHistory_Empty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "token")
	entries, err := client.GetHistory(context.Background(), "sensor.temp", time.Now())
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want empty", entries)
	}
}

func TestRESTClient_GetErrorLog(t *testing.T) {
	t.Parallel()

	logText := "2026-01-03 ERROR [homeassistant.components.mqtt] connection lost\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/error_log" {
			t.Errorf("path = %q, want /api/error_log", r.URL.Path)
		}
		_, _ = w.Write([]byte(logText))
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "token")
	got, err := client.GetErrorLog(context.Background())
	if err != nil {
		t.Fatalf("GetErrorLog() error = %v", err)
	}
	if got != logText {
		t.Errorf("GetErrorLog() = %q, want %q", got, logText)
	}
}

func TestRESTClient_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "token")
	_, err := client.GetStates(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Body != "boom" {
		t.Errorf("Body = %q, want boom", apiErr.Body)
	}
}

func TestRESTClient_Timeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewRESTClientWithConfig(server.URL, "token", RESTClientConfig{Timeout: 20 * time.Millisecond})
	_, err := client.GetStates(context.Background())

	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
}

func TestRESTClient_ContextDeadline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewRESTClient(server.URL, "token")
	_, err := client.GetStates(ctx)

	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
}
