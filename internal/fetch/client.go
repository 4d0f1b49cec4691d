// Package fetch retrieves raw usage data from the usage API, one
// calendar date per request, with bounded concurrency.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/usagetop/usagetop/internal/model"
)

const defaultBaseURL = "https://api.openai.com"

// maxErrorBody caps how much of an error response is kept for reporting.
const maxErrorBody = 4 << 10

// APIError is a non-success response from the usage API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("usage API returned status %d: %s", e.Status, e.Body)
}

// DayFetcher fetches the raw usage entries for one calendar date.
type DayFetcher interface {
	FetchDay(ctx context.Context, date string) ([]model.RawRecord, error)
}

// Client is the HTTP DayFetcher against the /v1/usage endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a usage API client. An empty baseURL selects the
// public endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// usagePayload is the list envelope the usage endpoint returns.
type usagePayload struct {
	Object string            `json:"object"`
	Data   []model.RawRecord `json:"data"`
}

// FetchDay requests the usage entries for one date (YYYY-MM-DD). A
// non-2xx response is returned as *APIError carrying the status and
// response body.
func (c *Client) FetchDay(ctx context.Context, date string) ([]model.RawRecord, error) {
	url := fmt.Sprintf("%s/v1/usage?date=%s", c.baseURL, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	var payload usagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding usage response for %s: %w", date, err)
	}

	return payload.Data, nil
}
