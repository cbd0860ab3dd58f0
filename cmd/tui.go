package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"assessment-rag/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Query the recommender from a terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(true)
		svc := initService(cmd.Context(), cfg)
		defer svc.Close()

		// keep log lines off the alternate screen
		prev := log.Logger
		log.Logger = zerolog.New(io.Discard)
		defer func() { log.Logger = prev }()

		if err := tui.Run(svc, catalogSummary(svc), inferenceTimeout(cfg)); err != nil {
			log.Logger = prev
			log.Error().Err(err).Msg("TUI exited")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
