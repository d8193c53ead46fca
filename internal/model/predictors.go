package model

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// NaiveBayesParams are the parameters of a multinomial naive Bayes model.
// FeatureLogProb[c] lists log P(feature|c) for features seen in training;
// DefaultLogProb[c] applies to every other feature.
type NaiveBayesParams struct {
	Classes        []int           `json:"classes"`
	ClassLogPrior  []float64       `json:"class_log_prior"`
	FeatureLogProb []SparseWeights `json:"feature_log_prob"`
	DefaultLogProb []float64       `json:"default_log_prob"`
}

// NaiveBayes is a multinomial naive Bayes classifier.
type NaiveBayes struct {
	p NaiveBayesParams
}

// NewNaiveBayes validates params.
func NewNaiveBayes(nFeatures int, p NaiveBayesParams) (*NaiveBayes, error) {
	n := len(p.Classes)
	if n < 2 {
		return nil, fmt.Errorf("naive bayes needs at least 2 classes, got %d: %w", n, domain.ErrInvalidArtifact)
	}
	if len(p.ClassLogPrior) != n || len(p.FeatureLogProb) != n || len(p.DefaultLogProb) != n {
		return nil, fmt.Errorf("naive bayes: per-class arrays must have %d entries: %w", n, domain.ErrInvalidArtifact)
	}
	if err := checkIndices(nFeatures, p.FeatureLogProb); err != nil {
		return nil, err
	}
	return &NaiveBayes{p: p}, nil
}

// Predict returns the class with the highest joint log-likelihood per row.
func (m *NaiveBayes) Predict(ctx context.Context, x domain.FeatureMatrix) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error is self-describing
	}
	out := make([]int, x.NumRows())
	for i, row := range x.Rows {
		best, bestScore := 0, math.Inf(-1)
		for c := range m.p.Classes {
			score := m.p.ClassLogPrior[c] + row.Dot(m.p.FeatureLogProb[c], m.p.DefaultLogProb[c])
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		out[i] = m.p.Classes[best]
	}
	return out, nil
}

// LinearParams are the parameters of a linear classifier (perceptron, SGD).
// Binary models carry one coefficient row; multi-class models one row per class.
type LinearParams struct {
	Classes   []int           `json:"classes"`
	Coef      []SparseWeights `json:"coef"`
	Intercept []float64       `json:"intercept"`
}

// Linear is a linear decision-function classifier.
type Linear struct {
	p LinearParams
}

// NewLinear validates params.
func NewLinear(nFeatures int, p LinearParams) (*Linear, error) {
	n := len(p.Classes)
	if n < 2 {
		return nil, fmt.Errorf("linear model needs at least 2 classes, got %d: %w", n, domain.ErrInvalidArtifact)
	}
	rows := n
	if n == 2 {
		rows = 1
	}
	if len(p.Coef) != rows || len(p.Intercept) != rows {
		return nil, fmt.Errorf("linear model with %d classes needs %d coef rows: %w", n, rows, domain.ErrInvalidArtifact)
	}
	if err := checkIndices(nFeatures, p.Coef); err != nil {
		return nil, err
	}
	return &Linear{p: p}, nil
}

// Predict returns Classes[1] for a positive binary decision, otherwise the
// class with the largest one-vs-rest score.
func (m *Linear) Predict(ctx context.Context, x domain.FeatureMatrix) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error is self-describing
	}
	out := make([]int, x.NumRows())
	for i, row := range x.Rows {
		if len(m.p.Coef) == 1 {
			if row.Dot(m.p.Coef[0], 0)+m.p.Intercept[0] > 0 {
				out[i] = m.p.Classes[1]
			} else {
				out[i] = m.p.Classes[0]
			}
			continue
		}
		best, bestScore := 0, math.Inf(-1)
		for c := range m.p.Coef {
			if s := row.Dot(m.p.Coef[c], 0) + m.p.Intercept[c]; s > bestScore {
				best, bestScore = c, s
			}
		}
		out[i] = m.p.Classes[best]
	}
	return out, nil
}

// KMeansParams are the centroids of a k-means model.
type KMeansParams struct {
	Centroids []SparseWeights `json:"centroids"`
}

// KMeans assigns each row to its nearest centroid.
type KMeans struct {
	centroids []SparseWeights
	sqNorms   []float64
}

// NewKMeans validates params and precomputes centroid norms.
func NewKMeans(nFeatures int, p KMeansParams) (*KMeans, error) {
	if len(p.Centroids) < 1 {
		return nil, fmt.Errorf("kmeans needs at least one centroid: %w", domain.ErrInvalidArtifact)
	}
	if err := checkIndices(nFeatures, p.Centroids); err != nil {
		return nil, err
	}
	norms := make([]float64, len(p.Centroids))
	for c, w := range p.Centroids {
		for _, v := range w {
			norms[c] += v * v
		}
	}
	return &KMeans{centroids: p.Centroids, sqNorms: norms}, nil
}

// Predict returns the index of the closest centroid (squared Euclidean).
func (m *KMeans) Predict(ctx context.Context, x domain.FeatureMatrix) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error is self-describing
	}
	out := make([]int, x.NumRows())
	for i, row := range x.Rows {
		xx := row.SquaredNorm()
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range m.centroids {
			d := xx - 2*row.Dot(centroid, 0) + m.sqNorms[c]
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		out[i] = best
	}
	return out, nil
}

func checkIndices(nFeatures int, rows []SparseWeights) error {
	if nFeatures <= 0 {
		return nil
	}
	for r, w := range rows {
		for idx := range w {
			if idx >= nFeatures {
				return fmt.Errorf("row %d: feature index %d >= %d: %w", r, idx, nFeatures, domain.ErrInvalidArtifact)
			}
		}
	}
	return nil
}
