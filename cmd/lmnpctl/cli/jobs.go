package cli

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/lmnp-erp/lmnp-erp/jobs"
)

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Enqueue background jobs",
	}
	cmd.PersistentFlags().String("redis", "127.0.0.1:6379", "Redis address of the job queue")
	cmd.PersistentFlags().String("user", "", "User whose declarations are processed")

	refresh := &cobra.Command{
		Use:   "refresh-totals",
		Short: "Recompute and persist the totals of every declaration of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, user := jobsClient(cmd)
			defer client.Close()
			info, err := client.EnqueueRefreshTotals(cmd.Context(), user)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s\n", info.Type, info.ID)
			return err
		},
	}
	warmup := &cobra.Command{
		Use:   "warmup [DECLARATION_ID...]",
		Short: "Precompute the liasse cache of a user's declarations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, user := jobsClient(cmd)
			defer client.Close()
			info, err := client.EnqueueReportsWarmup(cmd.Context(), user, args...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s\n", info.Type, info.ID)
			return err
		},
	}
	cmd.AddCommand(refresh, warmup)
	return cmd
}

func jobsClient(cmd *cobra.Command) (*jobs.Client, string) {
	addr, _ := cmd.Flags().GetString("redis")
	user, _ := cmd.Flags().GetString("user")
	return jobs.NewClient(asynq.RedisClientOpt{Addr: addr}), user
}
