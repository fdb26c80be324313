// Package client provides the pollbus command-line client.
//
// The commands talk to the pollbus HTTP gateway (POLLBUS_HTTP, default
// http://127.0.0.1:8080) and, for `health`, to the gRPC health service
// (POLLBUS_GRPC, default 127.0.0.1:50051).
//
// Usage
//
//	pollbus push --key orders --data '{"id":1}'
//
//	# one long-poll for the billing group
//	pollbus poll --key orders --group billing
//
//	# keep polling, server-side CEL filter, stop after 10 events
//	pollbus poll --key orders --group billing --follow --limit 10 \
//	    --filter 'data.total > 100'
//
//	pollbus stats
//	pollbus health
package client
