package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"assessment-rag/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume recommendation requests from RabbitMQ",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(true)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := initService(ctx, cfg)
		defer svc.Close()

		return queue.NewWorker(cfg.Queue, svc, inferenceTimeout(cfg)).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
