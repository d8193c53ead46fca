package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/streameval/internal/domain"
	"github.com/kailas-cloud/streameval/internal/evaluation"
	"github.com/kailas-cloud/streameval/internal/metrics"
	"github.com/kailas-cloud/streameval/internal/text"
)

// Status is the outcome of one delivery.
type Status string

// Delivery outcomes.
const (
	StatusProcessed Status = "processed"
	StatusEmpty     Status = "empty"
	StatusMalformed Status = "malformed"
)

// ModelScore is one model's metrics for a batch.
type ModelScore struct {
	ModelID string
	Name    string
	Metrics evaluation.Metrics
}

// ModelFailure is a model left out of a batch's report.
type ModelFailure struct {
	ModelID string
	Err     error
}

// Outcome describes what happened to one delivery.
type Outcome struct {
	Status   Status
	Batch    int // 1-based position within the current run; 0 if not counted
	Records  int
	Skipped  int
	Scores   []ModelScore
	Failures []ModelFailure
	// Summary is set when this batch completed a run.
	Summary *domain.Summary
}

// Service is the batch controller: it evaluates each delivery against the
// model bank and emits a summary every TargetBatches non-empty batches.
// Process and Run must be called from a single goroutine; Snapshot may be
// called concurrently.
type Service struct {
	bank       ModelBank
	vectorizer Vectorizer
	labels     LabelEncoder
	reporter   Reporter
	logger     *zap.Logger

	acc     *evaluation.Accumulator
	batches map[string][]int

	mu    sync.RWMutex
	state domain.RunState

	now   func() time.Time
	newID func() string
}

// New creates a controller. state must come from domain.NewRunState.
func New(
	bank ModelBank, vectorizer Vectorizer, labels LabelEncoder,
	reporter Reporter, state domain.RunState, logger *zap.Logger,
) *Service {
	ids := make([]string, 0, len(bank.Entries()))
	for _, e := range bank.Entries() {
		ids = append(ids, e.ID)
	}
	return &Service{
		bank:       bank,
		vectorizer: vectorizer,
		labels:     labels,
		reporter:   reporter,
		logger:     logger,
		acc:        evaluation.NewAccumulator(ids),
		batches:    make(map[string][]int, len(ids)),
		state:      state,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// WithClock overrides the time source used to stamp summaries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Snapshot returns the current run state.
func (s *Service) Snapshot() domain.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Run consumes deliveries until the source fails or ctx is cancelled.
// Malformed deliveries are logged and skipped. Transport failures end the
// run and are returned; cancellation returns ctx.Err().
func (s *Service) Run(ctx context.Context, src Source) error {
	snap := s.Snapshot()
	s.logger.Info("Waiting for batches",
		zap.Int("target_batches", snap.TargetBatches),
		zap.Strings("models", s.acc.ModelIDs()),
	)

	for {
		payload, err := src.Next(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr //nolint:wrapcheck // context error is self-describing
			}
			if errors.Is(err, domain.ErrMalformedBatch) {
				metrics.BatchesTotal.WithLabelValues(string(StatusMalformed)).Inc()
				s.logger.Warn("Skipping undeliverable batch", zap.Error(err))
				continue
			}
			return fmt.Errorf("receive batch: %w", err)
		}

		if _, err := s.Process(ctx, payload); err != nil {
			if errors.Is(err, domain.ErrMalformedBatch) {
				continue
			}
			return err
		}
	}
}

// Process evaluates one delivery. Malformed payloads return an error
// wrapping domain.ErrMalformedBatch and leave the run state untouched, as do
// empty batches (without error). A cancelled ctx aborts before the batch is
// counted.
func (s *Service) Process(ctx context.Context, payload []byte) (Outcome, error) {
	batch, parseErrs := ParseBatch(payload)
	for _, err := range parseErrs {
		s.logger.Warn("Skipping malformed input", zap.Error(err))
	}
	if batch.Skipped > 0 {
		metrics.RecordsTotal.WithLabelValues("skipped").Add(float64(batch.Skipped))
	}

	if batch.Empty() {
		if len(parseErrs) > 0 {
			metrics.BatchesTotal.WithLabelValues(string(StatusMalformed)).Inc()
			return Outcome{Status: StatusMalformed, Skipped: batch.Skipped},
				fmt.Errorf("no evaluable records: %w: %w", domain.ErrMalformedBatch, errors.Join(parseErrs...))
		}
		metrics.BatchesTotal.WithLabelValues(string(StatusEmpty)).Inc()
		s.logger.Debug("Skipping empty batch")
		return Outcome{Status: StatusEmpty}, nil
	}

	start := time.Now()
	docs := text.Documents(batch.Records)
	x := s.vectorizer.Vectorize(docs)
	y := s.labels.Encode(batch.Labels())

	preds := s.bank.PredictAll(ctx, x)
	if err := ctx.Err(); err != nil {
		return Outcome{}, err //nolint:wrapcheck // context error is self-describing
	}

	s.mu.RLock()
	position := s.state.BatchesProcessed + 1
	sequence := s.state.Sequence
	s.mu.RUnlock()

	log := s.logger.With(zap.Int("run", sequence), zap.Int("batch", position))
	out := Outcome{
		Status:  StatusProcessed,
		Batch:   position,
		Records: batch.Len(),
		Skipped: batch.Skipped,
	}

	for _, p := range preds {
		metrics.PredictionDuration.WithLabelValues(p.Entry.ID).Observe(p.Duration.Seconds())
		if p.Err != nil {
			out.Failures = append(out.Failures, ModelFailure{ModelID: p.Entry.ID, Err: p.Err})
			metrics.PredictionFailuresTotal.WithLabelValues(p.Entry.ID).Inc()
			log.Error("Model prediction failed", zap.String("model", p.Entry.ID), zap.Error(p.Err))
			continue
		}

		labels := p.Labels
		if p.Entry.Alignment == domain.AlignMajority {
			labels = evaluation.AlignMajority(labels, y)
		}
		m, err := s.acc.Score(p.Entry.ID, labels, y)
		if err != nil {
			out.Failures = append(out.Failures, ModelFailure{ModelID: p.Entry.ID, Err: err})
			metrics.PredictionFailuresTotal.WithLabelValues(p.Entry.ID).Inc()
			log.Error("Model scoring failed", zap.String("model", p.Entry.ID), zap.Error(err))
			continue
		}
		s.batches[p.Entry.ID] = append(s.batches[p.Entry.ID], position)
		out.Scores = append(out.Scores, ModelScore{ModelID: p.Entry.ID, Name: p.Entry.Name, Metrics: m})

		metrics.ModelAccuracy.WithLabelValues(p.Entry.ID).Set(m.Accuracy)
		log.Info("Model scored",
			zap.String("model", p.Entry.ID),
			zap.String("name", p.Entry.Name),
			zap.Float64("accuracy", m.Accuracy),
			zap.Float64("precision", m.Precision),
			zap.Float64("recall", m.Recall),
			zap.Float64("f1", m.F1),
			zap.Ints("labels", m.Labels),
			zap.String("confusion_matrix", m.ConfusionString()),
		)
	}

	metrics.BatchesTotal.WithLabelValues(string(StatusProcessed)).Inc()
	metrics.RecordsTotal.WithLabelValues("evaluated").Add(float64(batch.Len()))
	metrics.BatchDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	complete := s.state.Advance()
	s.mu.Unlock()

	if complete {
		summary := s.completeRun(ctx)
		out.Summary = &summary
	}
	return out, nil
}

// completeRun reports the finished run and starts the next one.
func (s *Service) completeRun(ctx context.Context) domain.Summary {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	summary := domain.Summary{
		RunID:         s.newID(),
		Sequence:      state.Sequence,
		TargetBatches: state.TargetBatches,
		CompletedAt:   s.now().UTC(),
	}
	histories := s.acc.Histories()
	for _, e := range s.bank.Entries() {
		summary.Series = append(summary.Series, domain.Series{
			ModelID:  e.ID,
			Name:     e.Name,
			Accuracy: histories[e.ID],
			Batches:  append([]int(nil), s.batches[e.ID]...),
		})
	}

	log := s.logger.With(zap.String("run_id", summary.RunID), zap.Int("run", summary.Sequence))
	if err := s.reporter.Report(ctx, summary); err != nil {
		log.Error("Summary report failed", zap.Error(err))
	} else {
		log.Info("Run complete, summary reported", zap.Int("batches", state.BatchesProcessed))
	}
	metrics.RunsCompletedTotal.Inc()

	s.acc.Reset()
	s.batches = make(map[string][]int, len(s.batches))
	s.mu.Lock()
	s.state.Reset()
	s.mu.Unlock()

	return summary
}
