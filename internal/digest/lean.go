// Package digest shapes raw Home Assistant entity data into compact,
// token-efficient views: lean projections, per-domain summaries, whole-system
// overviews, and scored search results. Everything here is a pure
// transformation of a point-in-time snapshot; nothing is cached.
package digest

import (
	"strings"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
)

// LeanView is a reduced projection of an entity. It only ever contains keys
// derived from the source entity; selected attributes are nested under an
// "attributes" sub-map so that a lean view's keys are always a subset of a
// detailed view's keys.
type LeanView map[string]any

// EntityID returns the entity_id of the view, or "" if absent.
func (v LeanView) EntityID() string {
	if s, ok := v["entity_id"].(string); ok {
		return s
	}
	return ""
}

// DomainImportantAttributes lists the attributes worth carrying in a lean
// projection for each domain. Unknown domains carry only the base fields.
var DomainImportantAttributes = map[string][]string{
	"light":         {"brightness", "color_temp", "rgb_color", "supported_color_modes"},
	"switch":        {"device_class"},
	"binary_sensor": {"device_class"},
	"sensor":        {"device_class", "unit_of_measurement", "state_class"},
	"climate":       {"hvac_mode", "current_temperature", "temperature", "hvac_action"},
	"media_player":  {"media_title", "media_artist", "source", "volume_level"},
	"cover":         {"current_position", "current_tilt_position"},
	"fan":           {"percentage", "preset_mode"},
	"camera":        {"entity_picture"},
	"automation":    {"last_triggered"},
	"scene":         {},
	"script":        {"last_triggered"},
}

// baseLeanAttributes are included in every lean projection when present.
var baseLeanAttributes = []string{"friendly_name", "unit_of_measurement"}

// NormalizeOptions controls how an entity is projected.
type NormalizeOptions struct {
	// Fields selects an explicit field list. Supported selectors:
	// "state", "attributes", "attr.<name>", "context",
	// "last_changed", "last_updated". Missing keys are silently omitted.
	// Takes precedence over Detailed.
	Fields []string
	// Detailed returns the full attribute map plus timestamps.
	Detailed bool
}

// Normalize produces a lean projection of one entity.
// With no options it returns the default lean view: entity_id, state, and the
// base plus domain-important attributes that are present. A nil attributes
// map never fails; it just projects to {entity_id, state}.
func Normalize(e homeassistant.Entity, opts NormalizeOptions) LeanView {
	if len(opts.Fields) > 0 {
		return projectFields(e, opts.Fields)
	}
	if opts.Detailed {
		return detailedView(e)
	}
	return projectFields(e, leanFields(e.Domain()))
}

// leanFields builds the selector list for the default lean mode.
func leanFields(domain string) []string {
	fields := []string{"state"}
	for _, attr := range baseLeanAttributes {
		fields = append(fields, "attr."+attr)
	}
	for _, attr := range DomainImportantAttributes[domain] {
		fields = append(fields, "attr."+attr)
	}
	return fields
}

// detailedView returns the full entity as a view.
func detailedView(e homeassistant.Entity) LeanView {
	v := LeanView{
		"entity_id":    e.EntityID,
		"state":        e.State,
		"last_changed": e.LastChanged,
		"last_updated": e.LastUpdated,
	}
	if e.Attributes != nil {
		v["attributes"] = e.Attributes
	}
	return v
}

// projectFields applies an explicit selector list. entity_id is always kept.
func projectFields(e homeassistant.Entity, fields []string) LeanView {
	v := LeanView{"entity_id": e.EntityID}

	for _, field := range fields {
		switch {
		case field == "state":
			v["state"] = e.State
		case field == "attributes":
			if e.Attributes != nil {
				v["attributes"] = e.Attributes
			}
		case strings.HasPrefix(field, "attr.") && len(field) > len("attr."):
			name := field[len("attr."):]
			if val, ok := e.Attributes[name]; ok {
				attrs, _ := v["attributes"].(map[string]any)
				if attrs == nil {
					attrs = make(map[string]any)
					v["attributes"] = attrs
				}
				attrs[name] = val
			}
		case field == "context":
			if e.Context != nil {
				v["context"] = e.Context
			}
		case field == "last_changed":
			v["last_changed"] = e.LastChanged
		case field == "last_updated":
			v["last_updated"] = e.LastUpdated
		}
	}

	return v
}
