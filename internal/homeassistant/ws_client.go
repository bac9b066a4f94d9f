// Package homeassistant provides a WebSocket client for Home Assistant registry reads.
package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"
)

// maxWSMessageSize is the maximum WebSocket message size (16MB).
// Registry listings on large installations need a generous limit.
const maxWSMessageSize = 16 * 1024 * 1024

// WSClient is a minimal WebSocket client for the registry listings the REST
// API does not expose. It connects lazily, authenticates once, and performs
// serial request/response exchanges; there are no subscriptions and no
// background reads.
type WSClient struct {
	baseURL string
	token   string

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
}

// NewWSClient creates a WebSocket client for Home Assistant.
func NewWSClient(baseURL, token string) *WSClient {
	return &WSClient{
		baseURL: baseURL,
		token:   token,
	}
}

// wsEnvelope is the common shape of messages on the wire.
type wsEnvelope struct {
	ID      int64           `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success bool            `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wsError        `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// wsError is the error object in a command result.
type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// buildWSURL converts the base URL to the WebSocket endpoint URL.
func (c *WSClient) buildWSURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already WebSocket scheme
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	u.Path = "/api/websocket"
	return u.String(), nil
}

// connect dials and authenticates. Callers must hold c.mu.
func (c *WSClient) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	wsURL, err := c.buildWSURL()
	if err != nil {
		return fmt.Errorf("building WebSocket URL: %w", err)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dialing WebSocket: %w", err)
	}
	conn.SetReadLimit(maxWSMessageSize)

	if err := c.authenticate(ctx, conn); err != nil {
		_ = conn.Close(websocket.StatusProtocolError, "auth failed")
		return fmt.Errorf("authentication: %w", err)
	}

	c.conn = conn
	return nil
}

// authenticate performs the auth_required -> auth -> auth_ok handshake.
func (c *WSClient) authenticate(ctx context.Context, conn *websocket.Conn) error {
	var hello wsEnvelope
	if err := readEnvelope(ctx, conn, &hello); err != nil {
		return fmt.Errorf("reading auth_required: %w", err)
	}
	if hello.Type != "auth_required" {
		return fmt.Errorf("unexpected message type: %s", hello.Type)
	}

	auth := struct {
		Type        string `json:"type"`
		AccessToken string `json:"access_token"`
	}{Type: "auth", AccessToken: c.token}
	if err := writeJSON(ctx, conn, auth); err != nil {
		return fmt.Errorf("sending auth: %w", err)
	}

	var result wsEnvelope
	if err := readEnvelope(ctx, conn, &result); err != nil {
		return fmt.Errorf("reading auth result: %w", err)
	}
	switch result.Type {
	case "auth_ok":
		return nil
	case "auth_invalid":
		return fmt.Errorf("invalid token: %s", result.Message)
	default:
		return fmt.Errorf("unexpected auth response: %s", result.Type)
	}
}

// sendCommand sends one command and waits for its matching result.
// The connection is serial by design: one in-flight command at a time.
func (c *WSClient) sendCommand(ctx context.Context, cmdType string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.nextID++
	cmd := struct {
		ID   int64  `json:"id"`
		Type string `json:"type"`
	}{ID: c.nextID, Type: cmdType}

	if err := writeJSON(ctx, c.conn, cmd); err != nil {
		c.dropConn()
		return nil, fmt.Errorf("sending %s: %w", cmdType, err)
	}

	// Skip anything that is not the result for our id (e.g. stray pongs).
	for {
		var env wsEnvelope
		if err := readEnvelope(ctx, c.conn, &env); err != nil {
			c.dropConn()
			return nil, fmt.Errorf("reading %s result: %w", cmdType, err)
		}
		if env.Type != "result" || env.ID != cmd.ID {
			continue
		}
		if !env.Success {
			msg := "unknown error"
			if env.Error != nil {
				msg = fmt.Sprintf("%s: %s", env.Error.Code, env.Error.Message)
			}
			return nil, fmt.Errorf("%s failed: %s", cmdType, msg)
		}
		return env.Result, nil
	}
}

// dropConn discards a broken connection so the next call reconnects.
// Callers must hold c.mu.
func (c *WSClient) dropConn() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusInternalError, "request failed")
		c.conn = nil
	}
}

// Close closes the WebSocket connection if one is open.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(websocket.StatusNormalClosure, "shutdown")
	c.conn = nil
	return err
}

// GetEntityRegistry lists the entity registry.
// Command: config/entity_registry/list.
func (c *WSClient) GetEntityRegistry(ctx context.Context) ([]EntityRegistryEntry, error) {
	result, err := c.sendCommand(ctx, "config/entity_registry/list")
	if err != nil {
		return nil, err
	}

	var entries []EntityRegistryEntry
	if err := json.Unmarshal(result, &entries); err != nil {
		return nil, fmt.Errorf("decoding entity registry: %w", err)
	}
	return entries, nil
}

// GetAreaRegistry lists the area registry.
// Command: config/area_registry/list.
func (c *WSClient) GetAreaRegistry(ctx context.Context) ([]AreaRegistryEntry, error) {
	result, err := c.sendCommand(ctx, "config/area_registry/list")
	if err != nil {
		return nil, err
	}

	var entries []AreaRegistryEntry
	if err := json.Unmarshal(result, &entries); err != nil {
		return nil, fmt.Errorf("decoding area registry: %w", err)
	}
	return entries, nil
}

// readEnvelope reads one message and decodes it.
func readEnvelope(ctx context.Context, conn *websocket.Conn, env *wsEnvelope) error {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, env)
}

// writeJSON encodes and writes one message.
func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
