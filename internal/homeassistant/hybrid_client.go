// Package homeassistant provides a hybrid client combining REST and WebSocket APIs.
package homeassistant

import (
	"context"
	"time"
)

// HybridClient implements Client by routing registry listings to the
// WebSocket API and everything else to REST. Home Assistant only exposes
// the entity and area registries over WebSocket.
type HybridClient struct {
	rest *RESTClient
	ws   *WSClient
}

// Ensure HybridClient implements Client at compile time.
var _ Client = (*HybridClient)(nil)

// NewHybridClient creates a Client backed by both transports.
func NewHybridClient(rest *RESTClient, ws *WSClient) *HybridClient {
	return &HybridClient{rest: rest, ws: ws}
}

// NewDefaultClient creates a Client with default configuration for both transports.
func NewDefaultClient(baseURL, token string) *HybridClient {
	return NewHybridClient(NewRESTClient(baseURL, token), NewWSClient(baseURL, token))
}

// Close releases the WebSocket connection.
func (c *HybridClient) Close() error {
	return c.ws.Close()
}

func (c *HybridClient) CheckAPI(ctx context.Context) (string, error) {
	return c.rest.CheckAPI(ctx)
}

func (c *HybridClient) GetVersion(ctx context.Context) (string, error) {
	return c.rest.GetVersion(ctx)
}

func (c *HybridClient) GetStates(ctx context.Context) ([]Entity, error) {
	return c.rest.GetStates(ctx)
}

func (c *HybridClient) GetState(ctx context.Context, entityID string) (*Entity, error) {
	return c.rest.GetState(ctx, entityID)
}

func (c *HybridClient) CallService(ctx context.Context, domain, service string, data map[string]any) ([]Entity, error) {
	return c.rest.CallService(ctx, domain, service, data)
}

func (c *HybridClient) GetHistory(ctx context.Context, entityID string, start time.Time) ([]HistoryEntry, error) {
	return c.rest.GetHistory(ctx, entityID, start)
}

func (c *HybridClient) GetErrorLog(ctx context.Context) (string, error) {
	return c.rest.GetErrorLog(ctx)
}

func (c *HybridClient) GetEntityRegistry(ctx context.Context) ([]EntityRegistryEntry, error) {
	return c.ws.GetEntityRegistry(ctx)
}

func (c *HybridClient) GetAreaRegistry(ctx context.Context) ([]AreaRegistryEntry, error) {
	return c.ws.GetAreaRegistry(ctx)
}
