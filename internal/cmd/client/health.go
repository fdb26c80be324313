package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// errNotServing is returned when the server reports anything but SERVING.
var errNotServing = errors.New("not serving")

const defaultHealthTimeout = 3 * time.Second

// NewHealthCommand constructs the `health` command, which probes the gRPC
// health service at POLLBUS_GRPC.
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health over gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, _ := cmd.Flags().GetString("service")
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultHealthTimeout)
			defer cancel()
			conn, err := dialGRPC(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			res, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", res.GetStatus())
			if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return errNotServing
			}
			return nil
		},
	}
	cmd.Flags().String("service", "", "Service name (empty = overall)")
	return cmd
}
