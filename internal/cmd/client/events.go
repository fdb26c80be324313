package client

import (
	"fmt"

	json "github.com/goccy/go-json"
	transports "github.com/rzbill/pollbus/internal/cmd/client/transports"
	"github.com/spf13/cobra"
)

// NewPushCommand constructs the `push` command.
func NewPushCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push an event to a key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			data, _ := cmd.Flags().GetString("data")
			res, err := getTransport(baseURL).Push(cmd.Context(), key, parseData(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n", res.ID)
			return nil
		},
	}
	cmd.Flags().StringP("key", "k", "", "Topic key")
	cmd.Flags().String("data", "null", "Event data (JSON; non-JSON is sent as a string)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// NewPollCommand constructs the `poll` command. Each event is printed as one
// JSON line. With --follow it keeps polling until interrupted.
func NewPollCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Long-poll events unseen by a consumer group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			group, _ := cmd.Flags().GetString("group")
			filter, _ := cmd.Flags().GetString("filter")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			follow, _ := cmd.Flags().GetBool("follow")
			limit, _ := cmd.Flags().GetInt("limit")

			ctx := cmd.Context()
			t := getTransport(baseURL)
			enc := json.NewEncoder(cmd.OutOrStdout())
			printed := 0
			for {
				evs, err := t.Poll(ctx, transports.PollRequest{Key: key, Group: group, Filter: filter, Timeout: timeout})
				if err != nil {
					if follow && ctx.Err() != nil {
						return nil
					}
					return err
				}
				for _, ev := range evs {
					if err := enc.Encode(ev); err != nil {
						return err
					}
					printed++
					if limit > 0 && printed >= limit {
						return nil
					}
				}
				if !follow {
					return nil
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringP("key", "k", "", "Topic key")
	cmd.Flags().StringP("group", "g", "", "Consumer group")
	cmd.Flags().String("filter", "", "CEL filter (server-side)")
	cmd.Flags().Duration("timeout", 0, "Per-poll timeout (0 = server default)")
	cmd.Flags().Bool("follow", false, "Keep polling until interrupted")
	cmd.Flags().Int("limit", 0, "With --follow, stop after N events (0 = infinite)")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

// NewStatsCommand constructs the `stats` command.
func NewStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show broker counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := getTransport(baseURL).Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "keys: %d\nevents: %d\nwaiters: %d\nconsumed_records: %d\n",
				st.Keys, st.Events, st.Waiters, st.ConsumedRecords)
			return nil
		},
	}
}
