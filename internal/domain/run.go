package domain

import (
	"fmt"
	"time"
)

// RunState tracks progress through one reporting cycle.
type RunState struct {
	Sequence         int `json:"sequence"`
	BatchesProcessed int `json:"batches_processed"`
	TargetBatches    int `json:"target_batches"`
}

// NewRunState derives the number of batches per run from the expected record
// total and the batch size.
func NewRunState(totalRecords, batchSize int) (RunState, error) {
	if batchSize < 1 {
		return RunState{}, fmt.Errorf("batch size must be >= 1, got %d: %w", batchSize, ErrInvalidConfig)
	}
	if totalRecords < 1 {
		return RunState{}, fmt.Errorf("total records must be >= 1, got %d: %w", totalRecords, ErrInvalidConfig)
	}
	target := totalRecords / batchSize
	if target < 1 {
		return RunState{}, fmt.Errorf(
			"total records %d smaller than batch size %d: %w", totalRecords, batchSize, ErrInvalidConfig,
		)
	}
	return RunState{Sequence: 1, TargetBatches: target}, nil
}

// Advance counts one processed batch and reports whether the run is complete.
func (s *RunState) Advance() bool {
	s.BatchesProcessed++
	return s.BatchesProcessed >= s.TargetBatches
}

// Reset starts the next run.
func (s *RunState) Reset() {
	s.BatchesProcessed = 0
	s.Sequence++
}

// Series is one model's accuracy per batch within a run. Batches holds the
// 1-based batch number of each accuracy value; a model that failed on a
// batch has no point for it.
type Series struct {
	ModelID  string    `json:"model_id"`
	Name     string    `json:"name"`
	Accuracy []float64 `json:"accuracy"`
	Batches  []int     `json:"batches"`
}

// Summary is a completed run handed to the reporters.
type Summary struct {
	RunID         string    `json:"run_id"`
	Sequence      int       `json:"sequence"`
	TargetBatches int       `json:"target_batches"`
	CompletedAt   time.Time `json:"completed_at"`
	Series        []Series  `json:"series"`
}
