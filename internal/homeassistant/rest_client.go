// Package homeassistant provides a REST client for the Home Assistant API.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// noResponseBody is the default message when the server returns an empty body.
const noResponseBody = "no response body"

// RESTClient provides the REST API operations of the adapter: states,
// service calls, history, error log, and version. It owns connection reuse
// and the bearer token; it never retries.
type RESTClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// RESTClientConfig configures the REST client.
type RESTClientConfig struct {
	// Timeout for HTTP requests (default: 30 seconds)
	Timeout time.Duration
}

// DefaultRESTClientConfig returns the default REST client configuration.
func DefaultRESTClientConfig() RESTClientConfig {
	return RESTClientConfig{
		Timeout: 30 * time.Second,
	}
}

// NewRESTClient creates a new REST client with default configuration.
func NewRESTClient(baseURL, token string) *RESTClient {
	return NewRESTClientWithConfig(baseURL, token, DefaultRESTClientConfig())
}

// NewRESTClientWithConfig creates a new REST client with custom configuration.
func NewRESTClientWithConfig(baseURL, token string, config RESTClientConfig) *RESTClient {
	// Normalize base URL - remove trailing slash and any /api suffix
	baseURL = strings.TrimSuffix(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/api")

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &RESTClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do executes a request against the API and returns the response body.
// Non-2xx responses are mapped to *APIError (or *NotFoundError for 404 when
// notFoundID is set); timeouts are mapped to *TimeoutError.
func (c *RESTClient) do(ctx context.Context, method, path string, body any, notFoundID string) ([]byte, error) {
	reqURL := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{URL: reqURL, Err: err}
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		// Drain and close the response body to enable connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	if resp.StatusCode == http.StatusNotFound && notFoundID != "" {
		return nil, &NotFoundError{EntityID: notFoundID}
	}

	bodyStr := string(respBody)
	if bodyStr == "" {
		bodyStr = noResponseBody
	}
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Body:       bodyStr,
	}
}

// isTimeout reports whether err is a deadline or client timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// CheckAPI verifies the API is reachable.
// Endpoint: GET /api/ returns {"message": "API running."}.
func (c *RESTClient) CheckAPI(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/", nil, "")
	if err != nil {
		return "", err
	}

	var status struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return "", fmt.Errorf("decoding API status: %w", err)
	}
	return status.Message, nil
}

// GetVersion returns the Home Assistant version.
// The version lives in the instance configuration, not in /api/ itself.
// Endpoint: GET /api/config.
func (c *RESTClient) GetVersion(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/config", nil, "")
	if err != nil {
		return "", err
	}

	var cfg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &cfg); err != nil {
		return "", fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Version == "" {
		return "unknown", nil
	}
	return cfg.Version, nil
}

// GetStates returns all entity states.
// Endpoint: GET /api/states.
func (c *RESTClient) GetStates(ctx context.Context) ([]Entity, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/states", nil, "")
	if err != nil {
		return nil, err
	}

	var entities []Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, fmt.Errorf("decoding states: %w", err)
	}
	return entities, nil
}

// GetState returns the state of one entity.
// Endpoint: GET /api/states/{entity_id}. A 404 is a *NotFoundError.
func (c *RESTClient) GetState(ctx context.Context, entityID string) (*Entity, error) {
	if !strings.Contains(entityID, ".") {
		return nil, &ValidationError{Field: "entity_id", Message: "must be in domain.object_id format"}
	}

	body, err := c.do(ctx, http.MethodGet, "/api/states/"+url.PathEscape(entityID), nil, entityID)
	if err != nil {
		return nil, err
	}

	var entity Entity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return &entity, nil
}

// CallService invokes a service and returns the entities it changed.
// Endpoint: POST /api/services/{domain}/{service}.
func (c *RESTClient) CallService(ctx context.Context, domain, service string, data map[string]any) ([]Entity, error) {
	if domain == "" || strings.Contains(domain, ".") || strings.Contains(domain, "/") {
		return nil, &ValidationError{Field: "domain", Message: "must be a bare domain name"}
	}
	if service == "" || strings.Contains(service, "/") {
		return nil, &ValidationError{Field: "service", Message: "must be a bare service name"}
	}
	if data == nil {
		data = map[string]any{}
	}

	path := fmt.Sprintf("/api/services/%s/%s", url.PathEscape(domain), url.PathEscape(service))
	body, err := c.do(ctx, http.MethodPost, path, data, "")
	if err != nil {
		return nil, err
	}

	var changed []Entity
	if err := json.Unmarshal(body, &changed); err != nil {
		// Some services respond with a non-list payload; the call still succeeded.
		return []Entity{}, nil
	}
	return changed, nil
}

// GetHistory returns state snapshots for an entity since start.
// Endpoint: GET /api/history/period/{start}?filter_entity_id={entity_id}.
// The upstream wraps results in one list per requested entity.
func (c *RESTClient) GetHistory(ctx context.Context, entityID string, start time.Time) ([]HistoryEntry, error) {
	if !strings.Contains(entityID, ".") {
		return nil, &ValidationError{Field: "entity_id", Message: "must be in domain.object_id format"}
	}

	path := fmt.Sprintf("/api/history/period/%s?filter_entity_id=%s",
		url.PathEscape(start.UTC().Format(time.RFC3339)),
		url.QueryEscape(entityID))

	body, err := c.do(ctx, http.MethodGet, path, nil, entityID)
	if err != nil {
		return nil, err
	}

	var wrapped [][]HistoryEntry
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	if len(wrapped) == 0 {
		return []HistoryEntry{}, nil
	}
	return wrapped[0], nil
}

// GetErrorLog returns the plain-text error log.
// Endpoint: GET /api/error_log.
func (c *RESTClient) GetErrorLog(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/error_log", nil, "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}
