package aiwash

import "fmt"

// ReferenceDataError reports missing or invalid centroid reference data.
// It is fatal for a whole run: no sentence can be scored without centroids.
type ReferenceDataError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ReferenceDataError) Error() string {
	msg := "invalid centroid reference data"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReferenceDataError) Unwrap() error { return e.Err }

// EmbeddingError reports a failed embedding call for a single sentence.
// It is non-fatal for the batch: the orchestrator records the owning file as
// a failure and moves on.
type EmbeddingError struct {
	Text string
	Err  error
}

func (e *EmbeddingError) Error() string {
	snippet := e.Text
	if len(snippet) > 60 {
		snippet = snippet[:60] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("embedding failed for %q: %v", snippet, e.Err)
	}
	return fmt.Sprintf("embedding failed for %q", snippet)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
