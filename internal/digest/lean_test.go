package digest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
)

func TestNormalize_DefaultLean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		entity homeassistant.Entity
		want   LeanView
	}{
		{
			name: "light carries brightness",
			entity: homeassistant.Entity{
				EntityID: "light.kitchen",
				State:    "on",
				Attributes: map[string]any{
					"friendly_name": "Kitchen Light",
					"brightness":    float64(180),
					"icon":          "mdi:lightbulb",
				},
			},
			want: LeanView{
				"entity_id": "light.kitchen",
				"state":     "on",
				"attributes": map[string]any{
					"friendly_name": "Kitchen Light",
					"brightness":    float64(180),
				},
			},
		},
		{
			name: "sensor carries unit and device class",
			entity: homeassistant.Entity{
				EntityID: "sensor.outdoor_temp",
				State:    "21.5",
				Attributes: map[string]any{
					"friendly_name":       "Outdoor Temperature",
					"unit_of_measurement": "°C",
					"device_class":        "temperature",
					"attribution":         "Data provided by somewhere",
				},
			},
			want: LeanView{
				"entity_id": "sensor.outdoor_temp",
				"state":     "21.5",
				"attributes": map[string]any{
					"friendly_name":       "Outdoor Temperature",
					"unit_of_measurement": "°C",
					"device_class":        "temperature",
				},
			},
		},
		{
			name: "unknown domain keeps base attributes only",
			entity: homeassistant.Entity{
				EntityID: "water_heater.boiler",
				State:    "eco",
				Attributes: map[string]any{
					"friendly_name": "Boiler",
					"away_mode":     "off",
				},
			},
			want: LeanView{
				"entity_id": "water_heater.boiler",
				"state":     "eco",
				"attributes": map[string]any{
					"friendly_name": "Boiler",
				},
			},
		},
		{
			name: "nil attributes never fail",
			entity: homeassistant.Entity{
				EntityID: "switch.bare",
				State:    "off",
			},
			want: LeanView{
				"entity_id": "switch.bare",
				"state":     "off",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize(tt.entity, NormalizeOptions{})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_FieldSelection(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC)
	entity := homeassistant.Entity{
		EntityID: "climate.living_room",
		State:    "heat",
		Attributes: map[string]any{
			"current_temperature": float64(20),
			"temperature":         float64(22),
		},
		LastChanged: now,
		LastUpdated: now,
		Context:     &homeassistant.Context{ID: "ctx-1"},
	}

	tests := []struct {
		name   string
		fields []string
		want   LeanView
	}{
		{
			name:   "single attribute selector",
			fields: []string{"state", "attr.temperature"},
			want: LeanView{
				"entity_id": "climate.living_room",
				"state":     "heat",
				"attributes": map[string]any{
					"temperature": float64(22),
				},
			},
		},
		{
			name:   "missing attribute silently omitted",
			fields: []string{"state", "attr.nonexistent"},
			want: LeanView{
				"entity_id": "climate.living_room",
				"state":     "heat",
			},
		},
		{
			name:   "full attributes selector",
			fields: []string{"attributes"},
			want: LeanView{
				"entity_id": "climate.living_room",
				"attributes": map[string]any{
					"current_temperature": float64(20),
					"temperature":         float64(22),
				},
			},
		},
		{
			name:   "timestamps and context",
			fields: []string{"last_changed", "last_updated", "context"},
			want: LeanView{
				"entity_id":    "climate.living_room",
				"last_changed": now,
				"last_updated": now,
				"context":      &homeassistant.Context{ID: "ctx-1"},
			},
		},
		{
			name:   "unknown selector ignored",
			fields: []string{"state", "bogus"},
			want: LeanView{
				"entity_id": "climate.living_room",
				"state":     "heat",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize(entity, NormalizeOptions{Fields: tt.fields})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_Detailed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC)
	entity := homeassistant.Entity{
		EntityID: "light.kitchen",
		State:    "on",
		Attributes: map[string]any{
			"friendly_name": "Kitchen Light",
			"brightness":    float64(180),
			"icon":          "mdi:lightbulb",
		},
		LastChanged: now,
		LastUpdated: now,
	}

	got := Normalize(entity, NormalizeOptions{Detailed: true})

	want := LeanView{
		"entity_id":    "light.kitchen",
		"state":        "on",
		"attributes":   entity.Attributes,
		"last_changed": now,
		"last_updated": now,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize(detailed) mismatch (-want +got):\n%s", diff)
	}
}

// Lean keys must always be a subset of detailed keys for the same entity.
func TestNormalize_LeanIsSubsetOfDetailed(t *testing.T) {
	t.Parallel()

	entity := homeassistant.Entity{
		EntityID: "media_player.tv",
		State:    "playing",
		Attributes: map[string]any{
			"friendly_name": "TV",
			"media_title":   "Some Movie",
			"volume_level":  0.4,
		},
	}

	lean := Normalize(entity, NormalizeOptions{})
	detailed := Normalize(entity, NormalizeOptions{Detailed: true})

	for key := range lean {
		if _, ok := detailed[key]; !ok {
			t.Errorf("lean key %q not present in detailed view", key)
		}
	}

	leanAttrs, _ := lean["attributes"].(map[string]any)
	detailedAttrs, _ := detailed["attributes"].(map[string]any)
	for key := range leanAttrs {
		if _, ok := detailedAttrs[key]; !ok {
			t.Errorf("lean attribute %q not present in detailed attributes", key)
		}
	}
}

func TestLeanView_EntityID(t *testing.T) {
	t.Parallel()

	if got := (LeanView{"entity_id": "light.a"}).EntityID(); got != "light.a" {
		t.Errorf("EntityID() = %q, want %q", got, "light.a")
	}
	if got := (LeanView{}).EntityID(); got != "" {
		t.Errorf("EntityID() on empty view = %q, want empty", got)
	}
}

func TestFieldsTakePrecedenceOverDetailed(t *testing.T) {
	t.Parallel()

	entity := homeassistant.Entity{
		EntityID:   "switch.fan",
		State:      "on",
		Attributes: map[string]any{"friendly_name": "Fan"},
	}

	got := Normalize(entity, NormalizeOptions{Fields: []string{"state"}, Detailed: true})
	want := LeanView{
		"entity_id": "switch.fan",
		"state":     "on",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}
