package aiwash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Per-file outcomes reported through the progress callback and tallied in
// the manifest.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// ProgressFunc receives per-file completion events during a batch run.
type ProgressFunc func(done, total int, path, status string)

// Orchestrator drives classification over many input files. Runs are
// idempotent and resumable: each file's output artifact is keyed by a
// fingerprint combining the file content and the centroid set, so unchanged
// work is reused and a rerun naturally reattempts only what failed.
type Orchestrator struct {
	engine    *Engine
	centroids *CentroidSet
	cfg       Config
	log       *zap.Logger
	progress  ProgressFunc
}

// NewOrchestrator creates an Orchestrator. Configuration validation happens
// here, before any file is touched.
func NewOrchestrator(engine *Engine, centroids *CentroidSet, cfg Config, log *zap.Logger) (*Orchestrator, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if centroids == nil {
		return nil, &ReferenceDataError{Reason: "no centroid set provided"}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{engine: engine, centroids: centroids, cfg: cfg, log: log}, nil
}

// SetProgress registers a per-file completion callback.
func (o *Orchestrator) SetProgress(fn ProgressFunc) { o.progress = fn }

// DiscoverInputs enumerates input files under baseDir matching the doublestar
// glob pattern, sorted for reproducibility. A limit of 0 means no limit.
func DiscoverInputs(baseDir, pattern string, limit int) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(baseDir), pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(baseDir, m))
	}
	sort.Strings(files)
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// Run classifies every file, skipping files whose artifact is already fresh,
// and returns the finalized manifest. File-level failures are recorded by
// name and never abort the batch; a partial batch is a reportable condition,
// not a fatal one.
func (o *Orchestrator) Run(ctx context.Context, files []string) (*RunManifest, error) {
	man := &RunManifest{
		RunID:               uuid.NewString(),
		StartedAt:           time.Now().UTC(),
		Params:              o.cfg,
		CentroidFingerprint: o.centroids.Fingerprint(),
		ExpectedFiles:       len(files),
	}

	o.log.Info("starting batch run",
		zap.String("run_id", man.RunID),
		zap.Int("files", len(files)),
		zap.String("centroid_fingerprint", shortFingerprint(man.CentroidFingerprint)),
		zap.Bool("force", o.cfg.Force),
	)

	var mu sync.Mutex
	done := 0
	fingerprints := make(map[string]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for _, path := range files {
		g.Go(func() error {
			status, fp, err := o.processFile(gctx, path)

			mu.Lock()
			done++
			d := done
			if fp != "" {
				fingerprints[path] = fp
			}
			switch status {
			case StatusProcessed:
				man.Processed++
			case StatusSkipped:
				man.Skipped++
			case StatusFailed:
				man.Failed++
				man.Failures = append(man.Failures, FileFailure{Path: path, Reason: err.Error()})
			}
			mu.Unlock()

			if err != nil {
				o.log.Warn("file failed", zap.String("path", path), zap.Error(err))
			} else {
				o.log.Debug("file done", zap.String("path", path), zap.String("status", status))
			}
			if o.progress != nil {
				o.progress(d, len(files), path, status)
			}
			return nil
		})
	}
	// Worker closures always return nil; file errors live in the manifest.
	_ = g.Wait()

	sort.Slice(man.Failures, func(i, j int) bool { return man.Failures[i].Path < man.Failures[j].Path })
	man.Coverage = verifyCoverage(files, fingerprints)
	man.FinishedAt = time.Now().UTC()

	if len(man.Coverage.Missing) > 0 {
		o.log.Warn("coverage mismatch",
			zap.Int("expected", man.Coverage.Expected),
			zap.Int("produced", man.Coverage.Produced),
			zap.Strings("missing", man.Coverage.Missing),
		)
	}
	o.log.Info("batch run finished",
		zap.String("run_id", man.RunID),
		zap.Int("processed", man.Processed),
		zap.Int("skipped", man.Skipped),
		zap.Int("failed", man.Failed),
		zap.Duration("elapsed", man.FinishedAt.Sub(man.StartedAt)),
	)
	return man, nil
}

// processFile classifies one input file unless its artifact is already
// fresh. It returns the outcome, the combined fingerprint (when computable),
// and the failure cause if any.
func (o *Orchestrator) processFile(ctx context.Context, path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StatusFailed, "", fmt.Errorf("failed to read input: %w", err)
	}
	fp := combineFingerprints(contentHash(data), o.centroids.Fingerprint())

	out := ArtifactPath(path)
	if !o.cfg.Force && artifactFingerprint(out) == fp {
		return StatusSkipped, fp, nil
	}

	lines := nonEmptyLines(data)
	recs := make([]ClassificationRecord, 0, len(lines))
	for i, line := range lines {
		cctx, cancel := context.WithTimeout(ctx, o.cfg.EmbedTimeout())
		rec, err := o.engine.Classify(cctx, Sentence{Text: line, File: path, Line: i + 1})
		cancel()
		if err != nil {
			// No artifact is written for a failed file, so a rerun with the
			// same fingerprints reattempts it.
			return StatusFailed, fp, fmt.Errorf("sentence %d: %w", i+1, err)
		}
		recs = append(recs, rec)
	}

	if err := WriteArtifact(out, recs, fp, o.cfg); err != nil {
		return StatusFailed, fp, err
	}
	return StatusProcessed, fp, nil
}

// verifyCoverage compares expected inputs against files that now hold a
// valid, matching-fingerprint artifact.
func verifyCoverage(files []string, fingerprints map[string]string) Coverage {
	cov := Coverage{Expected: len(files)}
	for _, path := range files {
		fp, ok := fingerprints[path]
		if ok && artifactFingerprint(ArtifactPath(path)) == fp {
			cov.Produced++
		} else {
			cov.Missing = append(cov.Missing, path)
		}
	}
	sort.Strings(cov.Missing)
	return cov
}

// Write serializes the manifest as indented JSON.
func (m *RunManifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// combineFingerprints binds a file's content identity to the centroid set it
// was classified against. Either side changing retires the artifact.
func combineFingerprints(fileHash, centroidFingerprint string) string {
	sum := sha256.Sum256([]byte(fileHash + ":" + centroidFingerprint))
	return hex.EncodeToString(sum[:])
}

func nonEmptyLines(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
