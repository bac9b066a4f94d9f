// Package homeassistant provides clients for the Home Assistant REST and WebSocket APIs.
package homeassistant

import (
	"context"
	"time"
)

// Client defines the upstream operations the adapter needs.
// Every call fetches fresh state; nothing is cached between invocations.
type Client interface {
	// CheckAPI verifies the API is reachable and returns its status message.
	CheckAPI(ctx context.Context) (string, error)

	// GetVersion returns the Home Assistant version from /api/config.
	GetVersion(ctx context.Context) (string, error)

	// GetStates returns all entity states.
	GetStates(ctx context.Context) ([]Entity, error)

	// GetState returns one entity state. A missing entity is a *NotFoundError.
	GetState(ctx context.Context, entityID string) (*Entity, error)

	// CallService invokes a service and returns the entities it changed.
	CallService(ctx context.Context, domain, service string, data map[string]any) ([]Entity, error)

	// GetHistory returns state snapshots for an entity since start.
	GetHistory(ctx context.Context, entityID string, start time.Time) ([]HistoryEntry, error)

	// GetErrorLog returns the plain-text error log.
	GetErrorLog(ctx context.Context) (string, error)

	// GetEntityRegistry lists the entity registry (WebSocket only upstream).
	GetEntityRegistry(ctx context.Context) ([]EntityRegistryEntry, error)

	// GetAreaRegistry lists the area registry (WebSocket only upstream).
	GetAreaRegistry(ctx context.Context) ([]AreaRegistryEntry, error)
}
