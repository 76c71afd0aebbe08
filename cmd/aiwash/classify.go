package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finwatch/aiwash"
	"github.com/finwatch/aiwash/adapters"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify extracted sentence files in batch",
	Long: `Classify every sentence file under the input directory. Each file gets
a CSV artifact next to it; files whose artifact already matches the
current content and centroid fingerprints are skipped unless --force.

Examples:
  # Classify all extracted sentence files under ./filings
  aiwash classify --input-dir ./filings --centroids centroids.json

  # Redo everything with a different margin
  aiwash classify --input-dir ./filings --centroids centroids.json --force --tau 0.1`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("input-dir", ".", "directory to scan for sentence files")
	classifyCmd.Flags().String("pattern", "**/*_sentences.txt", "glob pattern for input files")
	classifyCmd.Flags().String("centroids", "centroids.json", "path to the centroid reference file")
	classifyCmd.Flags().String("provider", "voyage", "embedding provider: voyage or openai")
	classifyCmd.Flags().String("model", "", "override the provider's default embedding model")
	classifyCmd.Flags().String("base-url", "", "override the OpenAI-compatible base URL")
	classifyCmd.Flags().Int("limit", 0, "classify at most N files (0 = no limit)")
	classifyCmd.Flags().String("manifest", "", "write the run manifest JSON to this path")
	addClassificationFlags(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
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
	inputDir, _ := flags.GetString("input-dir")
	pattern, _ := flags.GetString("pattern")
	centroidPath, _ := flags.GetString("centroids")
	limit, _ := flags.GetInt("limit")
	manifestPath, _ := flags.GetString("manifest")

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
	orch, err := aiwash.NewOrchestrator(engine, centroids, cfg, log)
	if err != nil {
		return err
	}

	files, err := aiwash.DiscoverInputs(inputDir, pattern, limit)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matching %q under %s", pattern, inputDir)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("classifying"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	orch.SetProgress(func(done, total int, path, status string) {
		_ = bar.Add(1)
	})

	man, err := orch.Run(cmd.Context(), files)
	if err != nil {
		return err
	}
	_ = bar.Finish()

	if manifestPath != "" {
		if err := man.Write(manifestPath); err != nil {
			return err
		}
		log.Info("manifest written", zap.String("path", manifestPath))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d processed, %d skipped, %d failed (coverage %d/%d)\n",
		man.RunID, man.Processed, man.Skipped, man.Failed, man.Coverage.Produced, man.Coverage.Expected)
	for _, f := range man.Failures {
		fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s: %s\n", f.Path, f.Reason)
	}
	if man.Failed > 0 || len(man.Coverage.Missing) > 0 {
		return fmt.Errorf("%d of %d files missing artifacts", len(man.Coverage.Missing), man.Coverage.Expected)
	}
	return nil
}

// newEmbeddingClient builds the embedding adapter selected by --provider.
func newEmbeddingClient(cmd *cobra.Command) (aiwash.EmbeddingClient, error) {
	flags := cmd.Flags()
	provider, _ := flags.GetString("provider")
	model, _ := flags.GetString("model")
	baseURL, _ := flags.GetString("base-url")

	switch provider {
	case "voyage":
		adapter, err := adapters.NewVoyageEmbeddingAdapter(nil)
		if err != nil {
			return nil, err
		}
		if model != "" {
			adapter.SetModel(model)
		}
		return adapter, nil
	case "openai":
		adapter, err := adapters.NewOpenAIEmbeddingAdapter(nil, baseURL)
		if err != nil {
			return nil, err
		}
		if model != "" {
			adapter.SetModel(model)
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want voyage or openai)", provider)
	}
}
