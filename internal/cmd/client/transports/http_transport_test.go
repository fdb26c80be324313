package transports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportPushPoll(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/events/push", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "orders", body["key"])
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"orders-1-1-x","created_at":"2026-01-01T00:00:00Z"}`))
	})
	mux.HandleFunc("/v1/events/poll", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"events":[{"id":"orders-1-1-x","data":{"id":1},"created_at":"2026-01-01T00:00:00Z"}]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	tr := NewHTTPTransport(ts.URL + "/")
	res, err := tr.Push(context.Background(), "orders", map[string]any{"id": 1})
	require.NoError(t, err)
	require.Equal(t, "orders-1-1-x", res.ID)

	evs, err := tr.Poll(context.Background(), PollRequest{Key: "orders", Group: "billing", Filter: "data.id == 1", Timeout: 2 * time.Second})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Contains(t, gotQuery, "group=billing")
	require.Contains(t, gotQuery, "timeout=2s")
	require.Contains(t, gotQuery, "filter=data.id")
}

func TestHTTPTransportAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid argument: key is required"}`))
	}))
	defer ts.Close()

	_, err := NewHTTPTransport(ts.URL).Push(context.Background(), "", 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Error(), "key is required")
}
