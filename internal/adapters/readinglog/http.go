package readinglog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/metrics"
)

const (
	logsPath    = "/api/logs"
	historyPath = "/api/history"
)

// HTTPClient talks to a reading log service over its JSON endpoints. It is
// both a Sink and a HistorySource.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the log service at baseURL. A nil hc uses
// http.DefaultClient.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  hc,
	}
}

// Append posts e to the log endpoint.
func (c *HTTPClient) Append(ctx context.Context, e model.LogEntry) error {
	err := c.post(ctx, e)
	metrics.RecordLogWrite("http", resultLabel(err))
	return err
}

func (c *HTTPClient) post(ctx context.Context, e model.LogEntry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+logsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create log request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("log request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// History fetches up to limit logged entries, newest first. A non-positive
// limit uses DefaultHistoryLimit.
func (c *HTTPClient) History(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+historyPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out []model.LogEntry
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
