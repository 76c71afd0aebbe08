package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finwatch/aiwash"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate classification against a held-out labeled set",
	Long: `Classify every sentence in a labeled CSV (sentence,label with header)
and report accuracy, macro-F1, the confusion matrix, and the failure
taxonomy over the six mislabel directions.

Examples:
  aiwash evaluate --gold holdout.csv --centroids centroids.json`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("gold", "", "labeled CSV of held-out sentences (required)")
	evaluateCmd.Flags().String("centroids", "centroids.json", "path to the centroid reference file")
	evaluateCmd.Flags().String("provider", "voyage", "embedding provider: voyage or openai")
	evaluateCmd.Flags().String("model", "", "override the provider's default embedding model")
	evaluateCmd.Flags().String("base-url", "", "override the OpenAI-compatible base URL")
	addClassificationFlags(evaluateCmd)
	_ = evaluateCmd.MarkFlagRequired("gold")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	goldPath, _ := flags.GetString("gold")
	centroidPath, _ := flags.GetString("centroids")

	embedding, err := newEmbeddingClient(cmd)
	if err != nil {
		return err
	}
	centroids, err := aiwash.LoadCentroids(centroidPath)
	if err != nil {
		return err
	}
	engine, err := aiwash.NewEngine(embedding, centroids, cfg)
	if err != nil {
		return err
	}

	texts, gold, err := readGoldCSV(goldPath)
	if err != nil {
		return err
	}
	log.Info("evaluating", zap.Int("sentences", len(texts)))

	pred := make([]aiwash.Label, len(texts))
	for i, text := range texts {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.EmbedTimeout())
		rec, err := engine.Classify(ctx, aiwash.Sentence{Text: text, File: goldPath, Line: i + 2})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to classify row %d: %w", i+2, err)
		}
		pred[i] = rec.Label
	}

	summary, err := aiwash.Summarize(gold, pred)
	if err != nil {
		return err
	}
	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, s *aiwash.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "accuracy: %.4f (%d/%d)\n", s.Accuracy, s.Correct, s.Total)
	fmt.Fprintf(out, "macro-F1: %.4f\n\n", s.MacroF1)

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprint(w, "gold \\ pred")
	for _, l := range aiwash.Labels {
		fmt.Fprintf(w, "\t%s", l)
	}
	fmt.Fprintln(w)
	for _, g := range aiwash.Labels {
		fmt.Fprint(w, g)
		for _, p := range aiwash.Labels {
			fmt.Fprintf(w, "\t%d", s.ConfusionCount(g, p))
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	fmt.Fprintln(out, "\nfailure taxonomy:")
	for _, t := range s.Failures {
		fmt.Fprintf(out, "  %s -> %s: %d\n", t.From, t.To, t.Count)
	}
}

// readGoldCSV parses a sentence,label CSV (with header) into parallel slices.
func readGoldCSV(path string) ([]string, []aiwash.Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gold set: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	if _, err := r.Read(); err != nil {
		return nil, nil, fmt.Errorf("failed to read gold header: %w", err)
	}

	var texts []string
	var labels []aiwash.Label
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse gold row %d: %w", line, err)
		}
		label, err := aiwash.ParseLabel(rec[1])
		if err != nil {
			return nil, nil, fmt.Errorf("gold row %d: %w", line, err)
		}
		texts = append(texts, rec[0])
		labels = append(labels, label)
	}
	return texts, labels, nil
}
