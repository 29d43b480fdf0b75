package main

import (
	"encoding/json"
	"fmt"

	"github.com/agastya71/mysl-pos-project-sub006/internal/config"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var queueNames = map[string]string{
	"receipt": worker.QueueReceipt,
	"email":   worker.QueueEmail,
}

func dlqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and replay dead-lettered jobs",
	}
	cmd.AddCommand(dlqStatsCmd(), dlqPeekCmd(), dlqRequeueCmd())
	return cmd
}

func openRedis() (*redis.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return infra.NewRedis(cfg.RedisURL)
}

func resolveQueue(name string) (string, error) {
	q, ok := queueNames[name]
	if !ok {
		return "", fmt.Errorf("unknown queue %q (want receipt or email)", name)
	}
	return q, nil
}

func dlqStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the depth of every dead letter queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			rdb, err := openRedis()
			if err != nil {
				return err
			}
			defer rdb.Close()
			for q, n := range worker.DLQLengths(cmd.Context(), rdb) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d\n", q, n)
			}
			return nil
		},
	}
}

func dlqPeekCmd() *cobra.Command {
	var limit int64
	cmd := &cobra.Command{
		Use:   "peek [receipt|email]",
		Short: "Print the newest dead-lettered jobs as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := resolveQueue(args[0])
			if err != nil {
				return err
			}
			rdb, err := openRedis()
			if err != nil {
				return err
			}
			defer rdb.Close()

			entries, err := worker.PeekDLQ(cmd.Context(), rdb, queue, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
	cmd.Flags().Int64VarP(&limit, "limit", "n", 10, "maximum entries")
	return cmd
}

func dlqRequeueCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "requeue [receipt|email]",
		Short: "Move the oldest dead-lettered jobs back onto their queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := resolveQueue(args[0])
			if err != nil {
				return err
			}
			rdb, err := openRedis()
			if err != nil {
				return err
			}
			defer rdb.Close()

			moved, err := worker.RequeueDLQ(cmd.Context(), rdb, queue, limit)
			fmt.Fprintf(cmd.OutOrStdout(), "requeued %d job(s)\n", moved)
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum entries to move")
	return cmd
}
