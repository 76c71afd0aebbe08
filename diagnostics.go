package aiwash

import "fmt"

// Transition is one ordered mislabel direction, e.g. Actionable predicted
// as Speculative.
type Transition struct {
	From  Label
	To    Label
	Count int
}

// Summary aggregates held-out evaluation results: accuracy, macro-F1, the
// 3x3 confusion matrix in canonical label order, and the failure taxonomy
// over the six ordered mislabel transitions.
type Summary struct {
	Total    int
	Correct  int
	Accuracy float64
	MacroF1  float64

	// Confusion[i][j] counts sentences with gold label Labels[i] predicted
	// as Labels[j].
	Confusion [3][3]int

	Failures []Transition
}

// ConfusionCount returns the confusion cell for a gold/predicted pair.
func (s *Summary) ConfusionCount(gold, pred Label) int {
	return s.Confusion[labelIndex(gold)][labelIndex(pred)]
}

// Summarize computes the evaluation summary for parallel slices of gold and
// predicted labels. It is pure; persisting a report is the caller's concern.
func Summarize(gold, pred []Label) (*Summary, error) {
	if len(gold) != len(pred) {
		return nil, fmt.Errorf("gold and predicted label counts differ: %d vs %d", len(gold), len(pred))
	}

	s := &Summary{Total: len(gold)}
	for i := range gold {
		gi, pi := labelIndex(gold[i]), labelIndex(pred[i])
		if gi < 0 {
			return nil, fmt.Errorf("unknown gold label %q at index %d", gold[i], i)
		}
		if pi < 0 {
			return nil, fmt.Errorf("unknown predicted label %q at index %d", pred[i], i)
		}
		s.Confusion[gi][pi]++
		if gi == pi {
			s.Correct++
		}
	}

	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}
	s.MacroF1 = macroF1(s.Confusion)

	for _, from := range Labels {
		for _, to := range Labels {
			if from == to {
				continue
			}
			s.Failures = append(s.Failures, Transition{
				From:  from,
				To:    to,
				Count: s.Confusion[labelIndex(from)][labelIndex(to)],
			})
		}
	}
	return s, nil
}

// macroF1 is the unweighted mean of per-label F1. A label absent from both
// gold and predictions contributes zero.
func macroF1(confusion [3][3]int) float64 {
	var sum float64
	for i := range Labels {
		tp := confusion[i][i]
		fp, fn := 0, 0
		for j := range Labels {
			if j == i {
				continue
			}
			fp += confusion[j][i]
			fn += confusion[i][j]
		}
		if tp == 0 {
			continue
		}
		precision := float64(tp) / float64(tp+fp)
		recall := float64(tp) / float64(tp+fn)
		sum += 2 * precision * recall / (precision + recall)
	}
	return sum / float64(len(Labels))
}
