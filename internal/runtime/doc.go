// Package runtime wires config, logging and the broker into a single-node
// pollbus instance. It owns the retention sweeper's lifecycle and exposes
// basic health checks to the transports.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default(), Logger: logger})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	_, _ = rt.Broker().Push(ctx, "orders", map[string]any{"id": 1})
package runtime
