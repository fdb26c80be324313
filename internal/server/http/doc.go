// Package httpserver provides pollbus's HTTP gateway: JSON push and
// long-poll endpoints over the runtime's broker.
//
// Routes:
//
//	POST /v1/events/push   {"key": "orders", "data": {...}}
//	GET  /v1/events/poll   ?key=orders&group=billing[&filter=CEL][&timeout=5s]
//	GET  /v1/healthz
//	GET  /v1/stats
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default(), Logger: logger})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
