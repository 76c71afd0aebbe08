package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finwatch/aiwash"
)

var centroidsCmd = &cobra.Command{
	Use:   "centroids",
	Short: "Build label centroids from labeled example sentences",
	Long: `Build the centroid reference file from a labeled CSV of example
sentences. The CSV needs a header and two columns: sentence,label. Every
label must have at least one example.

Examples:
  aiwash centroids --examples seed_labels.csv --out centroids.json`,
	RunE: runCentroids,
}

func init() {
	centroidsCmd.Flags().String("examples", "", "labeled CSV of example sentences (required)")
	centroidsCmd.Flags().String("out", "centroids.json", "output path for the centroid file")
	centroidsCmd.Flags().String("provider", "voyage", "embedding provider: voyage or openai")
	centroidsCmd.Flags().String("model", "", "override the provider's default embedding model")
	centroidsCmd.Flags().String("base-url", "", "override the OpenAI-compatible base URL")
	_ = centroidsCmd.MarkFlagRequired("examples")
}

func runCentroids(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	flags := cmd.Flags()
	examplesPath, _ := flags.GetString("examples")
	outPath, _ := flags.GetString("out")

	embedding, err := newEmbeddingClient(cmd)
	if err != nil {
		return err
	}

	examples, err := readLabeledCSV(examplesPath)
	if err != nil {
		return err
	}

	vectors := make(map[aiwash.Label][][]float32, len(aiwash.Labels))
	total := 0
	for label, texts := range examples {
		for _, text := range texts {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			vec, err := embedding.GenerateEmbedding(ctx, text)
			cancel()
			if err != nil {
				return fmt.Errorf("failed to embed example %q: %w", text, err)
			}
			vectors[label] = append(vectors[label], vec)
			total++
		}
	}
	log.Info("embedded examples", zap.Int("count", total))

	set, err := aiwash.ComputeCentroids(vectors, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := aiwash.SaveCentroids(outPath, set); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (dim %d, fingerprint %s)\n",
		outPath, set.Dimensions(), set.Fingerprint())
	return nil
}

// readLabeledCSV parses a sentence,label CSV (with header) into per-label
// sentence lists.
func readLabeledCSV(path string) (map[aiwash.Label][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open examples: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("failed to read examples header: %w", err)
	}

	out := make(map[aiwash.Label][]string)
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to parse examples row %d: %w", line, err)
		}
		label, err := aiwash.ParseLabel(rec[1])
		if err != nil {
			return nil, fmt.Errorf("examples row %d: %w", line, err)
		}
		out[label] = append(out[label], rec[0])
	}
	return out, nil
}
