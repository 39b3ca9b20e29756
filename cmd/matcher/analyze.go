package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-matcher/internal/extract"
	"resume-matcher/internal/extraction"
	"resume-matcher/internal/profile"
	"resume-matcher/internal/shared/telemetry"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Analyse résumé files and print their records as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	tbl, err := loadTaxonomy()
	if err != nil {
		return err
	}
	builder := profile.NewBuilder(extraction.New(tbl))

	records := analyzeFiles(cmd.Context(), builder, args)
	if len(records) == 0 {
		return fmt.Errorf("no readable files among %d given", len(args))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// analyzeFiles builds one record per readable file, in argument order.
// Unreadable files are logged and skipped.
func analyzeFiles(ctx context.Context, builder *profile.Builder, paths []string) []profile.Record {
	if ctx == nil {
		ctx = context.Background()
	}
	records := make([]profile.Record, 0, len(paths))
	for _, path := range paths {
		text, err := readFileText(ctx, path)
		if err != nil {
			telemetry.Warn("matcher.file_skipped", map[string]any{"path": path, "error": err})
			continue
		}
		records = append(records, builder.Build(path, filepath.Base(path), text))
	}
	return records
}

// readFileText leaves the type decision to the extractor, which falls back
// to content sniffing when the name carries no known extension.
func readFileText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return extract.ExtractTextFromBytes(ctx, data, "", filepath.Base(path))
}
