package aiwash

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMinTokens is the gate's minimum sentence length in tokens.
	DefaultMinTokens = 6

	// DefaultTau is the Actionable/Speculative margin threshold.
	DefaultTau = 0.07

	// DefaultEpsIrrelevant is the additive Irrelevant boost applied when both
	// Actionable and Speculative scores are weak and listy cues matched.
	DefaultEpsIrrelevant = 0.03

	// DefaultBoostActionable and DefaultBoostSpeculative are the additive cue
	// boosts. Their values are calibration data carried over from tuning on
	// held-out filings, not design invariants.
	DefaultBoostActionable  = 0.06
	DefaultBoostSpeculative = 0.06

	// DefaultWeakScore is the absolute threshold below which a centroid
	// similarity counts as weak.
	DefaultWeakScore = 0.15

	// DefaultListCommaRatio is the comma-per-token density at which a
	// category-term list counts as boilerplate.
	DefaultListCommaRatio = 0.10

	// DefaultWorkers bounds the batch worker pool.
	DefaultWorkers = 4

	// DefaultEmbedTimeoutSeconds bounds a single embedding call.
	DefaultEmbedTimeoutSeconds = 30
)

// Config holds every tunable consumed by the engine and the orchestrator.
// Zero values mean "use the default" for numeric fields; booleans are taken
// as given.
type Config struct {
	// MinTokens gates out sentences shorter than this many tokens.
	MinTokens int `yaml:"min_tokens" json:"min_tokens"`

	// TwoStageGate enables the Stage-0 fast rejection step.
	TwoStageGate bool `yaml:"two_stage_gate" json:"two_stage_gate"`

	// RuleBoosts enables the additive lexical-cue score adjustments.
	RuleBoosts bool `yaml:"rule_boosts" json:"rule_boosts"`

	// Tau is the A/S margin below which the lexical tie-break applies.
	Tau float64 `yaml:"tau" json:"tau"`

	// EpsIrrelevant is the weak-score Irrelevant boost.
	EpsIrrelevant float64 `yaml:"eps_irrelevant" json:"eps_irrelevant"`

	// Force reclassifies every file regardless of fingerprint freshness.
	Force bool `yaml:"force" json:"force"`

	BoostActionable  float64 `yaml:"boost_actionable" json:"boost_actionable"`
	BoostSpeculative float64 `yaml:"boost_speculative" json:"boost_speculative"`
	WeakScore        float64 `yaml:"weak_score" json:"weak_score"`
	ListCommaRatio   float64 `yaml:"list_comma_ratio" json:"list_comma_ratio"`

	// Workers bounds the number of files classified in parallel.
	Workers int `yaml:"workers" json:"workers"`

	// EmbedTimeoutSeconds bounds each embedding model call; on expiry the
	// owning file is recorded as a failure and the batch continues.
	EmbedTimeoutSeconds int `yaml:"embed_timeout_seconds" json:"embed_timeout_seconds"`
}

// DefaultConfig returns a Config with every default filled in. The gate and
// the rule boosts are on by default.
func DefaultConfig() Config {
	cfg := Config{TwoStageGate: true, RuleBoosts: true}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in default values for unset numeric fields.
func (c *Config) applyDefaults() {
	if c.MinTokens == 0 {
		c.MinTokens = DefaultMinTokens
	}
	if c.Tau == 0 {
		c.Tau = DefaultTau
	}
	if c.EpsIrrelevant == 0 {
		c.EpsIrrelevant = DefaultEpsIrrelevant
	}
	if c.BoostActionable == 0 {
		c.BoostActionable = DefaultBoostActionable
	}
	if c.BoostSpeculative == 0 {
		c.BoostSpeculative = DefaultBoostSpeculative
	}
	if c.WeakScore == 0 {
		c.WeakScore = DefaultWeakScore
	}
	if c.ListCommaRatio == 0 {
		c.ListCommaRatio = DefaultListCommaRatio
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.EmbedTimeoutSeconds == 0 {
		c.EmbedTimeoutSeconds = DefaultEmbedTimeoutSeconds
	}
}

// Validate rejects inconsistent parameter values. It runs before any file is
// touched so a bad configuration can never produce a partially-applied run.
func (c Config) Validate() error {
	if c.MinTokens < 0 {
		return fmt.Errorf("min_tokens must be >= 0, got %d", c.MinTokens)
	}
	if c.Tau < 0 {
		return fmt.Errorf("tau must be >= 0, got %g", c.Tau)
	}
	if c.EpsIrrelevant < 0 {
		return fmt.Errorf("eps_irrelevant must be >= 0, got %g", c.EpsIrrelevant)
	}
	if c.BoostActionable < 0 || c.BoostSpeculative < 0 {
		return fmt.Errorf("boosts must be >= 0, got actionable=%g speculative=%g",
			c.BoostActionable, c.BoostSpeculative)
	}
	if c.WeakScore < 0 {
		return fmt.Errorf("weak_score must be >= 0, got %g", c.WeakScore)
	}
	if c.ListCommaRatio < 0 || c.ListCommaRatio > 1 {
		return fmt.Errorf("list_comma_ratio must be in [0, 1], got %g", c.ListCommaRatio)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.EmbedTimeoutSeconds < 1 {
		return fmt.Errorf("embed_timeout_seconds must be >= 1, got %d", c.EmbedTimeoutSeconds)
	}
	return nil
}

// EmbedTimeout returns the per-call embedding deadline as a duration.
func (c Config) EmbedTimeout() time.Duration {
	return time.Duration(c.EmbedTimeoutSeconds) * time.Second
}

// LoadConfig reads a YAML configuration file. Fields the file leaves unset
// keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}
