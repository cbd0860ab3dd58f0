package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"assessment-rag/internal/helper"
	"assessment-rag/internal/jobdesc"
	"assessment-rag/internal/parser"
)

const demoQuery = "Looking to hire mid-level professionals who are proficient in Python, SQL and Java Script. Need an assessment package that can test all skills with max duration of 60 minutes."

var (
	flagQuery   string
	flagJobDesc string
	flagJSON    bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Answer one query and print the recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := flagQuery
		if flagJobDesc != "" {
			text, err := jobdesc.ExtractFile(flagJobDesc)
			if err != nil {
				return err
			}
			query = text
		}
		if strings.TrimSpace(query) == "" {
			query = demoQuery
		}

		cfg := loadConfig(true)
		svc := initService(cmd.Context(), cfg)
		defer svc.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), inferenceTimeout(cfg))
		defer cancel()

		ans, err := svc.Recommend(ctx, query)
		if err != nil {
			return err
		}

		if flagJSON {
			helper.PrettyPrint(os.Stdout, parser.TypedItems(ans.Assessments, parser.MaxRecommendations))
			return nil
		}

		log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", query)
		log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		if raw, ok := ans.Fallback(); ok {
			fmt.Printf("%s\n\n", raw)
			return nil
		}
		for i, a := range ans.Assessments {
			fmt.Printf("%d. %s\n", i+1, a.Name)
			fmt.Printf("   Test Type: %s\n   Duration: %s\n   Remote Testing: %s\n   Adaptive/IRT: %s\n   URL: %s\n\n",
				a.TestType, a.DurationText, a.RemoteTesting, a.Adaptive, a.URL)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "Hiring query (defaults to a demo query)")
	recommendCmd.Flags().StringVar(&flagJobDesc, "job-description", "", "Use the text of a .pdf, .docx, .txt or .md file as the query")
	recommendCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the typed JSON response")
	rootCmd.AddCommand(recommendCmd)
}
