package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"assessment-rag/internal/config"
	"assessment-rag/internal/rag"
)

const defaultConfigPath = "./configs/config.yaml"

var (
	flagConfig   string
	flagEnvFiles []string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:          "assessment-rag",
	Short:        "Recommend SHL assessments for a hiring query",
	SilenceUsage: true,
	Long: `assessment-rag indexes the SHL assessment catalog and answers hiring queries
with recommended assessments, over HTTP, a terminal UI, a queue or the command line.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", defaultConfigPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&flagEnvFiles, "env-file", nil, "Dotenv files to load (default config.env and .env)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and applies the logging section. validate
// rejects configs that cannot reach a model backend.
func loadConfig(validate bool) *config.Config {
	cfg, err := config.LoadConfig(flagConfig, flagEnvFiles...)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	setupLogging(cfg.Log)

	if validate {
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid config")
		}
	}
	log.Debug().Str("path", flagConfig).Str("index", cfg.Index.Backend).Str("strategy", cfg.RAG.Strategy).Msg("Loaded config")
	return cfg
}

func setupLogging(lc config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
}

// initService builds the recommendation service or exits.
func initService(ctx context.Context, cfg *config.Config) *rag.Service {
	svc, err := rag.Init(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing recommendation service")
	}
	return svc
}

func inferenceTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.InferenceLLM.TimeoutSecs*(cfg.InferenceLLM.MaxRetries+1)) * time.Second
}

func catalogSummary(svc *rag.Service) string {
	return fmt.Sprintf("%d assessments indexed, %s output", len(svc.Records()), svc.Strategy())
}
