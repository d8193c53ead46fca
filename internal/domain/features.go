package domain

import "math"

// SparseVector is one row of a FeatureMatrix. Indices are strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the dot product with a sparse weight map and a default for
// absent indices. Only non-zero entries of v contribute.
func (v SparseVector) Dot(weights map[int]float64, fallback float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		w, ok := weights[idx]
		if !ok {
			w = fallback
		}
		sum += v.Values[i] * w
	}
	return sum
}

// SquaredNorm returns the squared L2 norm.
func (v SparseVector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return sum
}

// Norm returns the L2 norm.
func (v SparseVector) Norm() float64 { return math.Sqrt(v.SquaredNorm()) }

// Len returns the number of non-zero entries.
func (v SparseVector) Len() int { return len(v.Indices) }

// FeatureMatrix is a fixed-width sparse encoding of a batch of documents.
type FeatureMatrix struct {
	Rows []SparseVector
	Cols int
}

// NumRows returns the number of encoded documents.
func (m FeatureMatrix) NumRows() int { return len(m.Rows) }

// LabelVector is the integer-encoded ground truth aligned with FeatureMatrix rows.
type LabelVector []int
