package aiwash

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// artifactHeader defines the per-file classification artifact: one row per
// sentence, stamped with the combined content/model fingerprint and the
// parameter values the run used.
var artifactHeader = []string{
	"sentence",
	"label",
	"score_actionable",
	"score_speculative",
	"score_irrelevant",
	"gated",
	"fingerprint",
	"tau",
	"eps_irr",
	"min_tokens",
}

// ArtifactPath maps an input sentence file to its sibling classification
// artifact.
func ArtifactPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_classified.csv"
}

// WriteArtifact writes the classification artifact for one input file. A
// file that yielded zero sentences still gets a stamp row carrying the
// fingerprint, so freshness checks work uniformly.
func WriteArtifact(path string, recs []ClassificationRecord, fingerprint string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(artifactHeader); err != nil {
		return fmt.Errorf("failed to write artifact header: %w", err)
	}

	stamp := func(rec ClassificationRecord) []string {
		return []string{
			rec.Text,
			string(rec.Label),
			formatScore(rec.Scores.Actionable),
			formatScore(rec.Scores.Speculative),
			formatScore(rec.Scores.Irrelevant),
			strconv.FormatBool(rec.Gated),
			fingerprint,
			formatScore(cfg.Tau),
			formatScore(cfg.EpsIrrelevant),
			strconv.Itoa(cfg.MinTokens),
		}
	}

	if len(recs) == 0 {
		if err := w.Write(stamp(ClassificationRecord{})); err != nil {
			return fmt.Errorf("failed to write artifact stamp: %w", err)
		}
	}
	for _, rec := range recs {
		if err := w.Write(stamp(rec)); err != nil {
			return fmt.Errorf("failed to write artifact row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush artifact: %w", err)
	}
	return nil
}

// ReadArtifact loads a classification artifact, returning its records and
// the stamped fingerprint. Empty stamp rows are not records and are skipped.
func ReadArtifact(path string) ([]ClassificationRecord, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, "", fmt.Errorf("artifact %s has no data rows", path)
	}

	fingerprint := ""
	var recs []ClassificationRecord
	for i, row := range rows[1:] {
		if len(row) < len(artifactHeader) {
			return nil, "", fmt.Errorf("artifact %s row %d is short", path, i+2)
		}
		if fingerprint == "" {
			fingerprint = row[6]
		}
		if row[0] == "" {
			continue
		}
		rec := ClassificationRecord{
			Text:  row[0],
			File:  path,
			Line:  len(recs) + 1,
			Label: Label(row[1]),
			Scores: ScoreVector{
				Actionable:  parseScore(row[2]),
				Speculative: parseScore(row[3]),
				Irrelevant:  parseScore(row[4]),
			},
			Gated: row[5] == "true",
		}
		recs = append(recs, rec)
	}
	return recs, fingerprint, nil
}

// artifactFingerprint returns the stamped fingerprint of an existing
// artifact, or "" when the artifact is absent or unreadable.
func artifactFingerprint(path string) string {
	_, fp, err := ReadArtifact(path)
	if err != nil {
		return ""
	}
	return fp
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseScore(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
