// Package evaluation scores predictions and keeps per-model accuracy history.
package evaluation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// Metrics is the score of one model on one batch.
type Metrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	// Labels are the sorted label codes indexing Confusion rows (truth) and
	// columns (prediction).
	Labels    []int
	Confusion [][]int
}

// ConfusionString renders the matrix one row per line.
func (m Metrics) ConfusionString() string {
	var b strings.Builder
	for i, row := range m.Confusion {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprint(row))
	}
	return b.String()
}

// Compute scores predictions against truth without touching any history.
// Precision, recall and F1 are binary (positive class 1) when at most two
// labels are observed and macro-averaged otherwise; empty denominators give 0.
func Compute(predictions []int, truth domain.LabelVector) (Metrics, error) {
	if len(truth) == 0 {
		return Metrics{}, fmt.Errorf("no ground truth: %w", domain.ErrScoring)
	}
	if len(predictions) != len(truth) {
		return Metrics{}, fmt.Errorf(
			"%d predictions for %d labels: %w", len(predictions), len(truth), domain.ErrScoring,
		)
	}

	labels := observedLabels(predictions, truth)
	pos := make(map[int]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	confusion := make([][]int, len(labels))
	for i := range confusion {
		confusion[i] = make([]int, len(labels))
	}

	correct := 0
	for i, want := range truth {
		got := predictions[i]
		if got == want {
			correct++
		}
		confusion[pos[want]][pos[got]]++
	}

	m := Metrics{
		Accuracy:  float64(correct) / float64(len(truth)),
		Labels:    labels,
		Confusion: confusion,
	}
	if len(labels) <= 2 {
		m.Precision, m.Recall, m.F1 = classScores(confusion, pos, 1)
	} else {
		for _, l := range labels {
			p, r, f := classScores(confusion, pos, l)
			m.Precision += p
			m.Recall += r
			m.F1 += f
		}
		n := float64(len(labels))
		m.Precision /= n
		m.Recall /= n
		m.F1 /= n
	}
	return m, nil
}

func classScores(confusion [][]int, pos map[int]int, label int) (precision, recall, f1 float64) {
	k, ok := pos[label]
	if !ok {
		return 0, 0, 0
	}
	tp := confusion[k][k]
	var predicted, actual int
	for i := range confusion {
		predicted += confusion[i][k]
		actual += confusion[k][i]
	}
	precision = ratio(tp, predicted)
	recall = ratio(tp, actual)
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func observedLabels(a, b []int) []int {
	set := make(map[int]struct{}, 4)
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, x := range b {
		set[x] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Ints(out)
	return out
}

// AlignMajority relabels cluster assignments with the majority truth label of
// each cluster's members. Ties go to the smaller label code.
func AlignMajority(clusters []int, truth domain.LabelVector) []int {
	votes := make(map[int]map[int]int)
	for i, c := range clusters {
		if i >= len(truth) {
			break
		}
		if votes[c] == nil {
			votes[c] = make(map[int]int)
		}
		votes[c][truth[i]]++
	}
	mapping := make(map[int]int, len(votes))
	for c, counts := range votes {
		best, bestN := 0, -1
		for l, n := range counts {
			if n > bestN || (n == bestN && l < best) {
				best, bestN = l, n
			}
		}
		mapping[c] = best
	}
	out := make([]int, len(clusters))
	for i, c := range clusters {
		out[i] = mapping[c]
	}
	return out
}
