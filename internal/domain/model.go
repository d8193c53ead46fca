package domain

import "context"

// Predictor is the uniform contract of every pre-trained model.
// Predict returns one class (or cluster) index per matrix row and must not
// mutate the predictor.
type Predictor interface {
	Predict(ctx context.Context, x FeatureMatrix) ([]int, error)
}

// ModelKind names a predictor family.
type ModelKind string

// Supported model kinds.
const (
	KindNaiveBayes ModelKind = "naive_bayes"
	KindLinear     ModelKind = "linear"
	KindKMeans     ModelKind = "kmeans"
)

// Supervised reports whether the kind predicts labels rather than clusters.
func (k ModelKind) Supervised() bool { return k != KindKMeans }

// Alignment selects how cluster indices are mapped onto labels before scoring.
type Alignment string

// Alignment modes.
const (
	// AlignNone compares raw cluster indices with label codes.
	AlignNone Alignment = "none"
	// AlignMajority maps each cluster to the majority label of its members.
	AlignMajority Alignment = "majority"
)
