package evaluation

import (
	"fmt"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// History is one model's per-batch accuracy within the current run.
type History []float64

// Accumulator scores batches and owns the accuracy histories of one run.
// It is not safe for concurrent use; the batch loop is its only writer.
type Accumulator struct {
	order     []string
	histories map[string]History
}

// NewAccumulator creates an accumulator reporting models in the given order.
func NewAccumulator(modelIDs []string) *Accumulator {
	a := &Accumulator{histories: make(map[string]History, len(modelIDs))}
	for _, id := range modelIDs {
		a.track(id)
	}
	return a
}

func (a *Accumulator) track(id string) {
	if _, ok := a.histories[id]; !ok {
		a.order = append(a.order, id)
		a.histories[id] = History{}
	}
}

// Score computes metrics for one model and appends its accuracy to the
// model's history. On error nothing is appended.
func (a *Accumulator) Score(modelID string, predictions []int, truth domain.LabelVector) (Metrics, error) {
	m, err := Compute(predictions, truth)
	if err != nil {
		return Metrics{}, fmt.Errorf("score %s: %w", modelID, err)
	}
	a.track(modelID)
	a.histories[modelID] = append(a.histories[modelID], m.Accuracy)
	return m, nil
}

// History returns a copy of one model's history.
func (a *Accumulator) History(modelID string) History {
	return append(History(nil), a.histories[modelID]...)
}

// Histories returns a copy of every history keyed by model ID.
func (a *Accumulator) Histories() map[string]History {
	out := make(map[string]History, len(a.histories))
	for id, h := range a.histories {
		out[id] = append(History(nil), h...)
	}
	return out
}

// ModelIDs returns the tracked models in reporting order.
func (a *Accumulator) ModelIDs() []string { return append([]string(nil), a.order...) }

// Reset clears every history, keeping the tracked models.
func (a *Accumulator) Reset() {
	for id := range a.histories {
		a.histories[id] = History{}
	}
}
