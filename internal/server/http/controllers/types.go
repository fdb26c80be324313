package controllers

import (
	"time"

	"github.com/rzbill/pollbus/internal/broker"
)

// pushReq is the body of POST /v1/events/push.
type pushReq struct {
	Key  string `json:"key"`
	Data any    `json:"data"`
}

// pushResp acknowledges an accepted push.
type pushResp struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// pollResp wraps the events returned by a long-poll; Events is never null.
type pollResp struct {
	Events []broker.Event `json:"events"`
}
