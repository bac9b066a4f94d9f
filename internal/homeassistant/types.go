// Package homeassistant provides types for the Home Assistant REST API.
package homeassistant

import (
	"strings"
	"time"
)

// Entity represents a Home Assistant entity state as returned by /api/states.
// Attributes are an open-ended mapping with no fixed schema across domains.
type Entity struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
	Context     *Context       `json:"context,omitempty"`
}

// Domain returns the category prefix of the entity ID ("light" for
// "light.kitchen"). Entities without a dot return the whole ID.
func (e Entity) Domain() string {
	if idx := strings.Index(e.EntityID, "."); idx > 0 {
		return e.EntityID[:idx]
	}
	return e.EntityID
}

// StringAttr safely extracts a string attribute.
// Returns an empty string if the key is absent or not a string.
func (e Entity) StringAttr(key string) string {
	if v, ok := e.Attributes[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Context represents the context of a state change.
type Context struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// HistoryEntry represents one state snapshot from /api/history/period.
type HistoryEntry struct {
	EntityID    string         `json:"entity_id,omitempty"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated,omitempty"`
}

// EntityRegistryEntry represents an entry in the entity registry.
// Registry listings are only available via the WebSocket API.
type EntityRegistryEntry struct {
	EntityID   string `json:"entity_id"`
	Platform   string `json:"platform"`
	DeviceID   string `json:"device_id,omitempty"`
	AreaID     string `json:"area_id,omitempty"`
	DisabledBy string `json:"disabled_by,omitempty"`
	Name       string `json:"name,omitempty"`
	UniqueID   string `json:"unique_id,omitempty"`
}

// AreaRegistryEntry represents an entry in the area registry.
type AreaRegistryEntry struct {
	AreaID  string   `json:"area_id"`
	Name    string   `json:"name"`
	Picture string   `json:"picture,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}
