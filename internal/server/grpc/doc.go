// Package grpcserver hosts pollbus's gRPC endpoint. It serves the standard
// grpc.health.v1.Health service so orchestrators can probe the broker.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := grpcserver.New(rt)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
