package stream

import (
	"context"

	"github.com/kailas-cloud/streameval/internal/domain"
	"github.com/kailas-cloud/streameval/internal/features"
	"github.com/kailas-cloud/streameval/internal/model"
)

// Source delivers raw batch payloads, blocking until one is available.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

// Vectorizer encodes normalized documents.
type Vectorizer interface {
	Vectorize(docs []string) domain.FeatureMatrix
}

// ModelBank runs every model on a feature matrix.
type ModelBank interface {
	Entries() []model.Entry
	PredictAll(ctx context.Context, x domain.FeatureMatrix) []model.Prediction
}

// LabelEncoder turns label strings into codes.
type LabelEncoder = features.LabelEncoder

// Reporter receives each completed run.
type Reporter interface {
	Report(ctx context.Context, s domain.Summary) error
}
