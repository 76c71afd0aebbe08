package aiwash_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/finwatch/aiwash"
	"github.com/finwatch/aiwash/pkg/testutil"
)

// Example shows classifying a single disclosure sentence.
func Example_classify() {
	// A real deployment loads centroids built from labeled examples and an
	// embedding adapter from the adapters package; the mock keeps this
	// example hermetic.
	centroids, err := aiwash.NewCentroidSet(map[aiwash.Label][]float32{
		aiwash.LabelActionable:  {1, 0, 0},
		aiwash.LabelSpeculative: {0, 1, 0},
		aiwash.LabelIrrelevant:  {0, 0, 1},
	}, time.Now().UTC())
	if err != nil {
		log.Fatal(err)
	}

	embedding := &testutil.MockEmbeddingClient{
		GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.9, 0.3, 0.1}, nil
		},
	}

	engine, err := aiwash.NewEngine(embedding, centroids, aiwash.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	rec, err := engine.Classify(context.Background(), aiwash.Sentence{
		Text: "We deployed machine learning models that reduced fulfillment costs by 30%.",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Label: %s\n", rec.Label)
	fmt.Printf("Gated: %v\n", rec.Gated)
	// Output:
	// Label: Actionable
	// Gated: false
}

// Example shows the extraction pipeline from raw filing text to
// classifier-ready sentences.
func Example_extract() {
	text := "Table of Contents\nWe deployed machine learning models that reduced\n- 12 -\nfulfillment costs across all segments.\nRevenue grew strongly this year.\n"
	sentences := aiwash.ExtractSentences(text, []string{"machine learning"})
	for _, s := range sentences {
		fmt.Println(s)
	}
	// Output:
	// We deployed machine learning models that reduced fulfillment costs across all segments.
}
