package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finwatch/aiwash"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract topic-relevant sentences from filing text",
	Long: `Extract sentences mentioning at least one topic keyword from raw
filing text files. Each input produces a *_sentences.txt file next to it,
one sentence per line. Existing outputs are kept unless --force.

Examples:
  aiwash extract --input-dir ./filings --keywords ai_terms.txt`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("input-dir", ".", "directory to scan for filing text")
	extractCmd.Flags().String("pattern", "**/*.txt", "glob pattern for input files")
	extractCmd.Flags().String("keywords", "", "path to the topic keyword file (required)")
	extractCmd.Flags().Int("limit", 0, "extract from at most N files (0 = no limit)")
	extractCmd.Flags().Bool("force", false, "rewrite outputs that already exist")
	_ = extractCmd.MarkFlagRequired("keywords")
}

// sentencesPath derives the extraction output path for an input file.
func sentencesPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_sentences.txt"
}

func runExtract(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	flags := cmd.Flags()
	inputDir, _ := flags.GetString("input-dir")
	pattern, _ := flags.GetString("pattern")
	keywordPath, _ := flags.GetString("keywords")
	limit, _ := flags.GetInt("limit")
	force, _ := flags.GetBool("force")

	keywords, err := aiwash.LoadKeywords(keywordPath)
	if err != nil {
		return err
	}
	if len(keywords) == 0 {
		return fmt.Errorf("keyword file %s contains no terms", keywordPath)
	}

	files, err := aiwash.DiscoverInputs(inputDir, pattern, limit)
	if err != nil {
		return err
	}

	written, skipped := 0, 0
	for _, path := range files {
		// Never re-extract from our own outputs.
		if strings.HasSuffix(path, "_sentences.txt") {
			continue
		}
		out := sentencesPath(path)
		if !force {
			if _, err := os.Stat(out); err == nil {
				skipped++
				continue
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		sentences := aiwash.ExtractSentences(string(data), keywords)

		var b strings.Builder
		for _, s := range sentences {
			b.WriteString(s)
			b.WriteByte('\n')
		}
		if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		written++
		log.Debug("extracted", zap.String("path", path), zap.Int("sentences", len(sentences)))
	}

	log.Info("extraction finished", zap.Int("written", written), zap.Int("skipped", skipped))
	fmt.Fprintf(cmd.OutOrStdout(), "extracted %d files, skipped %d existing\n", written, skipped)
	return nil
}
