// Package serverrun exposes the Run entrypoint used by the CLI to start the
// pollbus runtime with its HTTP gateway and gRPC health endpoint, handling
// configuration, lifecycle and shutdown.
//
// Example:
//
//	opts := serverrun.Options{ConfigPath: "pollbus.yaml", HTTPAddr: ":8080"}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
