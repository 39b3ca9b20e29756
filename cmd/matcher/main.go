// Package main implements the matcher CLI: analyse local résumé files and
// rank them against a free-text query without a server or database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/taxonomy"
)

var (
	logJSON      bool
	logDebug     bool
	taxonomyFile string
)

var rootCmd = &cobra.Command{
	Use:           "matcher",
	Short:         "Extract résumé facts and rank résumés against a query",
	Long:          "matcher extracts skills, experience, level and education from PDF, DOCX and text résumés and ranks them against a free-text requirement such as \"senior Python developer with 5 years\".",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return telemetry.Init(logJSON, logDebug)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		telemetry.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logJSON, "json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&taxonomyFile, "taxonomy", "", "Path to a taxonomy YAML file (defaults to the built-in table)")
}

func loadTaxonomy() (*taxonomy.Table, error) {
	if taxonomyFile == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(taxonomyFile)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
