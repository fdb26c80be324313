package controllers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rzbill/pollbus/internal/broker"
	"github.com/rzbill/pollbus/internal/runtime"
	logpkg "github.com/rzbill/pollbus/pkg/log"
)

// EventsController exposes push and long-poll over HTTP.
type EventsController struct {
	rt         *runtime.Runtime
	logger     logpkg.Logger
	limiter    *pushLimiter
	maxPayload int64
}

func NewEventsController(rt *runtime.Runtime, logger logpkg.Logger) *EventsController {
	cfg := rt.Config()
	return &EventsController{
		rt:         rt,
		logger:     logger,
		limiter:    newPushLimiter(cfg.RateLimit),
		maxPayload: cfg.Server.MaxPayloadBytes,
	}
}

func (c *EventsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/events/push", c.handlePush)
	mux.HandleFunc("/v1/events/poll", c.handlePoll)
}

func (c *EventsController) Close() {
	if c.limiter != nil {
		c.limiter.stop()
	}
}

// handlePush appends an event. 202 on success, 400 for a missing key or bad
// body, 413 for oversized bodies, 429 when the client is rate limited.
func (c *EventsController) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	logger := c.logger.WithContext(r.Context())
	if c.limiter != nil {
		if delay := c.limiter.reserve(clientAddr(r)); delay > 0 {
			logger.Warn("push rate limited", logpkg.Str("remote_addr", r.RemoteAddr))
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, c.maxPayload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var req pushReq
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ev, err := c.rt.Broker().Push(r.Context(), req.Key, req.Data)
	if err != nil {
		if errors.Is(err, broker.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("push failed", logpkg.Str("key", req.Key), logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to push event")
		return
	}
	writeJSON(w, http.StatusAccepted, pushResp{ID: ev.ID, CreatedAt: ev.CreatedAt})
}

// handlePoll long-polls for events unseen by the group. Timeouts and missing
// key/group answer 200 with an empty list.
func (c *EventsController) handlePoll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	q := r.URL.Query()
	key, group := q.Get("key"), q.Get("group")
	start := time.Now()
	evs, err := c.rt.Broker().Poll(r.Context(), key, group, broker.PollOptions{
		Filter:  q.Get("filter"),
		Timeout: parseTimeout(q.Get("timeout")),
	})
	if err != nil {
		if errors.Is(err, broker.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// client went away or the server is shutting down
		c.logger.WithContext(r.Context()).Debug("poll abandoned",
			logpkg.Str("key", key),
			logpkg.Str("group", group),
			logpkg.Err(err),
		)
		writeError(w, http.StatusServiceUnavailable, "Poll abandoned")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, pollResp{Events: evs})
	c.logger.WithContext(r.Context()).Debug("poll answered",
		logpkg.Str("key", key),
		logpkg.Str("group", group),
		logpkg.Int("events", len(evs)),
		logpkg.Dur("waited", time.Since(start)),
	)
}
