package model

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// Entry is one model of the bank with its identity.
type Entry struct {
	ID        string
	Name      string
	Kind      domain.ModelKind
	Alignment domain.Alignment
	Predictor domain.Predictor
}

// Spec describes an artifact to load into the bank.
type Spec struct {
	ID        string
	Name      string
	Path      string
	Alignment domain.Alignment
}

// Prediction is one model's output for a batch. Err is set when the model
// failed; Labels is then nil.
type Prediction struct {
	Entry    Entry
	Labels   []int
	Err      error
	Duration time.Duration
}

// Bank is the fixed, ordered set of predictors evaluated on every batch.
// It is immutable after construction.
type Bank struct {
	entries []Entry
	workers int
}

// NewBank builds a bank over entries. workers caps concurrent inference;
// values below 1 run models one at a time.
func NewBank(entries []Entry, workers int) (*Bank, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("model id is required: %w", domain.ErrInvalidConfig)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q: %w", e.ID, domain.ErrInvalidConfig)
		}
		if e.Predictor == nil {
			return nil, fmt.Errorf("model %q has no predictor: %w", e.ID, domain.ErrInvalidConfig)
		}
		seen[e.ID] = struct{}{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Bank{entries: append([]Entry(nil), entries...), workers: workers}, nil
}

// Load reads every artifact in specs and builds a bank.
func Load(specs []Spec, nFeatures, workers int) (*Bank, error) {
	entries := make([]Entry, 0, len(specs))
	for _, s := range specs {
		p, kind, err := LoadFile(s.Path, nFeatures)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", s.ID, err)
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		align := s.Alignment
		if align == "" {
			align = domain.AlignNone
		}
		if align == domain.AlignMajority && kind.Supervised() {
			return nil, fmt.Errorf(
				"model %s: %s predicts labels, majority alignment applies to cluster models only: %w",
				s.ID, kind, domain.ErrInvalidConfig,
			)
		}
		entries = append(entries, Entry{ID: s.ID, Name: name, Kind: kind, Alignment: align, Predictor: p})
	}
	return NewBank(entries, workers)
}

// Entries returns the models in bank order.
func (b *Bank) Entries() []Entry { return append([]Entry(nil), b.entries...) }

// Len returns the number of models.
func (b *Bank) Len() int { return len(b.entries) }

// PredictAll runs every model on x. A failing or panicking model only marks
// its own Prediction; results come back in bank order.
func (b *Bank) PredictAll(ctx context.Context, x domain.FeatureMatrix) []Prediction {
	out := make([]Prediction, len(b.entries))

	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, e := range b.entries {
		g.Go(func() error {
			out[i] = predictOne(ctx, e, x)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func predictOne(ctx context.Context, e Entry, x domain.FeatureMatrix) (pred Prediction) {
	pred.Entry = e
	start := time.Now()
	defer func() {
		pred.Duration = time.Since(start)
		if r := recover(); r != nil {
			pred.Labels = nil
			pred.Err = domain.NewPredictionError(e.ID, fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
		}
	}()

	labels, err := e.Predictor.Predict(ctx, x)
	if err != nil {
		pred.Err = domain.NewPredictionError(e.ID, err)
		return pred
	}
	if len(labels) != x.NumRows() {
		pred.Err = domain.NewPredictionError(e.ID,
			fmt.Errorf("got %d predictions for %d rows", len(labels), x.NumRows()))
		return pred
	}
	pred.Labels = labels
	return pred
}
