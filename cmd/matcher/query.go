package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resume-matcher/internal/extraction"
	"resume-matcher/internal/matching"
	"resume-matcher/internal/profile"
)

var queryCmd = &cobra.Command{
	Use:   "query --query <text> <files...>",
	Short: "Rank résumé files against a free-text requirement",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

var queryText string

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "Requirement text, e.g. \"senior Python developer with 5 years\" (required)")
	if err := queryCmd.MarkFlagRequired("query"); err != nil {
		panic(fmt.Sprintf("failed to mark query flag as required: %v", err))
	}

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(queryText) == "" {
		return fmt.Errorf("query must not be blank")
	}
	tbl, err := loadTaxonomy()
	if err != nil {
		return err
	}

	records := analyzeFiles(cmd.Context(), profile.NewBuilder(extraction.New(tbl)), args)
	ranking, err := matching.NewEngine(tbl).Rank(queryText, records)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(ranking)
}
