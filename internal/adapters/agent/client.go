package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// chatPath is the agent chat route relative to the base URL.
const chatPath = "/api/agent/chat"

// Client performs one agent exchange.
type Client interface {
	Chat(ctx context.Context, req Request) (Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

// Chat calls f.
func (f ClientFunc) Chat(ctx context.Context, req Request) (Response, error) { return f(ctx, req) }

// HTTPClient talks to an agent over its JSON chat endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the agent at baseURL. A nil hc uses
// http.DefaultClient; timeouts are applied per call by the Bridge.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  hc,
	}
}

// Chat posts req and decodes the reply. Non-2xx statuses, undecodable bodies,
// and blank response text are all errors.
func (c *HTTPClient) Chat(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("agent chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Response{}, fmt.Errorf("%w: %d", ErrAgentStatus, resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode chat response: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return Response{}, ErrEmptyResponse
	}
	return out, nil
}
