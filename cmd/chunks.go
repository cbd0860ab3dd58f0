package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"assessment-rag/internal/chunker"
	"assessment-rag/internal/helper"
	"assessment-rag/internal/rag"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Load and chunk the catalog without embedding it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(false)

		records, err := rag.LoadCatalog(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		chunks, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap).Chunk(records)
		if err != nil {
			return err
		}

		log.Info().Int("records", len(records)).Int("chunks", len(chunks)).Msg("Chunked catalog")
		helper.PrettyPrint(os.Stdout, chunks)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chunksCmd)
}
