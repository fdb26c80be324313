package transports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// HTTPTransport implements EventsTransport against the pollbus HTTP gateway.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport constructs a transport for baseURL. Requests are bounded by
// their context only, since long-polls legitimately block.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{}}
}

// APIError is a non-2xx response from the gateway.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Push appends an event via POST /v1/events/push.
func (t *HTTPTransport) Push(ctx context.Context, key string, data any) (PushResult, error) {
	body, err := json.Marshal(map[string]any{"key": key, "data": data})
	if err != nil {
		return PushResult{}, err
	}
	var out PushResult
	err = t.do(ctx, http.MethodPost, "/v1/events/push", bytes.NewReader(body), &out)
	return out, err
}

// Poll long-polls via GET /v1/events/poll.
func (t *HTTPTransport) Poll(ctx context.Context, req PollRequest) ([]Event, error) {
	q := url.Values{}
	q.Set("key", req.Key)
	q.Set("group", req.Group)
	if req.Filter != "" {
		q.Set("filter", req.Filter)
	}
	if req.Timeout > 0 {
		q.Set("timeout", req.Timeout.String())
	}
	var out struct {
		Events []Event `json:"events"`
	}
	if err := t.do(ctx, http.MethodGet, "/v1/events/poll?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// Stats fetches GET /v1/stats.
func (t *HTTPTransport) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := t.do(ctx, http.MethodGet, "/v1/stats", nil, &out)
	return out, err
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
