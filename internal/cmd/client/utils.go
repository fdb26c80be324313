package client

import (
	"context"
	"os"

	json "github.com/goccy/go-json"
	transports "github.com/rzbill/pollbus/internal/cmd/client/transports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// APIURLFromEnv returns the HTTP base URL from POLLBUS_HTTP or a default.
func APIURLFromEnv() string {
	if v := os.Getenv("POLLBUS_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// grpcAddrFromEnv returns the gRPC server address from POLLBUS_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("POLLBUS_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPC opens a client connection with insecure transport for local/dev.
func dialGRPC(_ context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func getTransport(baseURL BaseURLFunc) transports.EventsTransport {
	return transports.NewHTTPTransport(baseURL())
}

// parseData reads --data as JSON, falling back to a plain string.
func parseData(raw string) any {
	var v any
	if json.Unmarshal([]byte(raw), &v) == nil {
		return v
	}
	return raw
}
