package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedBatch signals a payload that is not a JSON object of records.
	ErrMalformedBatch = errors.New("malformed batch")
	// ErrMalformedRecord signals a record with missing or non-string fields.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrPredictionFailure signals a model that failed during inference.
	ErrPredictionFailure = errors.New("prediction failure")
	// ErrScoring signals predictions that cannot be scored against the truth.
	ErrScoring = errors.New("scoring failed")
	// ErrInvalidConfig signals invalid run configuration.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrTransportClosed signals that the ingress transport is gone.
	ErrTransportClosed = errors.New("transport closed")
	// ErrUnknownModelKind signals an artifact of an unregistered kind.
	ErrUnknownModelKind = errors.New("unknown model kind")
	// ErrInvalidArtifact signals an artifact whose parameters are inconsistent.
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// PredictionError wraps ErrPredictionFailure with the failing model.
type PredictionError struct {
	ModelID string
	Err     error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s: model %s: %v", ErrPredictionFailure.Error(), e.ModelID, e.Err)
}

func (e *PredictionError) Unwrap() []error { return []error{ErrPredictionFailure, e.Err} }

// NewPredictionError creates a prediction failure for modelID.
func NewPredictionError(modelID string, err error) error {
	return &PredictionError{ModelID: modelID, Err: err}
}
