package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finwatch/aiwash"
)

var (
	configPath string
	verbose    bool
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "aiwash",
	Short: "Classify AI-related disclosure sentences in corporate filings",
	Long: `aiwash extracts AI-related sentences from filing text and classifies
each one as Actionable, Speculative, or Irrelevant using embedding
similarity against label centroids plus lightweight rule heuristics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; credentials may come from the environment.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(centroidsCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(evaluateCmd)
}

// newLogger builds the process logger. Verbose mode switches to the
// human-readable development encoder at debug level.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadRunConfig resolves the effective configuration: file values when
// --config is given, defaults otherwise, then per-command flag overrides.
func loadRunConfig(cmd *cobra.Command) (aiwash.Config, error) {
	cfg := aiwash.DefaultConfig()
	if configPath != "" {
		loaded, err := aiwash.LoadConfig(configPath)
		if err != nil {
			return aiwash.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return aiwash.Config{}, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly-set classification flags over the
// file-derived configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *aiwash.Config) {
	flags := cmd.Flags()
	if flags.Changed("min-tokens") {
		cfg.MinTokens, _ = flags.GetInt("min-tokens")
	}
	if flags.Changed("tau") {
		cfg.Tau, _ = flags.GetFloat64("tau")
	}
	if flags.Changed("eps-irr") {
		cfg.EpsIrrelevant, _ = flags.GetFloat64("eps-irr")
	}
	if flags.Changed("two-stage") {
		cfg.TwoStageGate, _ = flags.GetBool("two-stage")
	}
	if flags.Changed("rule-boosts") {
		cfg.RuleBoosts, _ = flags.GetBool("rule-boosts")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("force") {
		cfg.Force, _ = flags.GetBool("force")
	}
}

// addClassificationFlags registers the flags shared by commands that run the
// classification engine.
func addClassificationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-tokens", aiwash.DefaultMinTokens, "minimum token count before the gate rejects a sentence")
	cmd.Flags().Float64("tau", aiwash.DefaultTau, "score margin below which rule cues break ties")
	cmd.Flags().Float64("eps-irr", aiwash.DefaultEpsIrrelevant, "irrelevant boost for weak list-like sentences")
	cmd.Flags().Bool("two-stage", true, "run the cheap gate before embedding")
	cmd.Flags().Bool("rule-boosts", true, "apply rule-based score boosts")
	cmd.Flags().Int("workers", aiwash.DefaultWorkers, "concurrent file workers")
	cmd.Flags().Bool("force", false, "reclassify even when artifacts are fresh")
}
