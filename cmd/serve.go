package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"assessment-rag/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation API and browser UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(true)
		if flagServeAddr != "" {
			cfg.Server.Addr = flagServeAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := initService(ctx, cfg)
		defer svc.Close()

		srv, err := server.New(svc, cfg.Server)
		if err != nil {
			return err
		}
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error().Err(err).Msg("Server stopped")
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
