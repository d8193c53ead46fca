// Package features encodes normalized documents and labels numerically.
package features

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// DefaultNFeatures is the default width of the hashed feature space (2^20).
const DefaultNFeatures = 1 << 20

// HashFunc names the token hash.
type HashFunc string

// Supported token hashes.
const (
	HashMurmur3 HashFunc = "murmur3"
	HashXXHash  HashFunc = "xxhash"
)

// Norm names the row normalization.
type Norm string

// Supported row normalizations.
const (
	NormL2   Norm = "l2"
	NormNone Norm = "none"
)

// Config configures a HashingVectorizer.
type Config struct {
	NFeatures int
	Hash      HashFunc
	Norm      Norm
}

// HashingVectorizer maps documents to fixed-width term-frequency rows without
// a learned vocabulary. It holds no mutable state and is safe for concurrent use.
type HashingVectorizer struct {
	nFeatures int
	hash      func(string) int32
	norm      Norm
}

// NewHashingVectorizer validates cfg and builds a vectorizer.
// Zero values select 2^20 features, murmur3 and L2 normalization.
func NewHashingVectorizer(cfg Config) (*HashingVectorizer, error) {
	if cfg.NFeatures == 0 {
		cfg.NFeatures = DefaultNFeatures
	}
	if cfg.NFeatures < 1 {
		return nil, fmt.Errorf("n_features must be positive, got %d: %w", cfg.NFeatures, domain.ErrInvalidConfig)
	}

	v := &HashingVectorizer{nFeatures: cfg.NFeatures, norm: cfg.Norm}
	switch cfg.Hash {
	case "", HashMurmur3:
		v.hash = murmur3Hash
	case HashXXHash:
		v.hash = xxHash
	default:
		return nil, fmt.Errorf("unknown hash %q: %w", cfg.Hash, domain.ErrInvalidConfig)
	}
	switch cfg.Norm {
	case "":
		v.norm = NormL2
	case NormL2, NormNone:
	default:
		return nil, fmt.Errorf("unknown norm %q: %w", cfg.Norm, domain.ErrInvalidConfig)
	}
	return v, nil
}

// NFeatures returns the width of every produced row.
func (v *HashingVectorizer) NFeatures() int { return v.nFeatures }

// Vectorize encodes each document as one sparse row, in input order.
// Empty documents produce empty rows.
func (v *HashingVectorizer) Vectorize(docs []string) domain.FeatureMatrix {
	rows := make([]domain.SparseVector, len(docs))
	for i, doc := range docs {
		rows[i] = v.row(doc)
	}
	return domain.FeatureMatrix{Rows: rows, Cols: v.nFeatures}
}

func (v *HashingVectorizer) row(doc string) domain.SparseVector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(doc) {
		counts[v.index(tok)]++
	}
	if len(counts) == 0 {
		return domain.SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var sq float64
	for i, idx := range indices {
		values[i] = counts[idx]
		sq += values[i] * values[i]
	}
	if v.norm == NormL2 && sq > 0 {
		n := math.Sqrt(sq)
		for i := range values {
			values[i] /= n
		}
	}
	return domain.SparseVector{Indices: indices, Values: values}
}

func (v *HashingVectorizer) index(token string) int {
	h := int64(v.hash(token))
	if h < 0 {
		h = -h
	}
	return int(h % int64(v.nFeatures))
}

// Tokenize splits doc on whitespace and drops single-character tokens.
func Tokenize(doc string) []string {
	fields := strings.Fields(doc)
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// murmur3Hash matches the signed 32-bit MurmurHash3 (seed 0) used by
// scikit-learn's HashingVectorizer, so exported weights index identically.
func murmur3Hash(s string) int32 {
	return int32(murmur3.SeedSum32(0, []byte(s))) //nolint:gosec // intentional reinterpretation
}

func xxHash(s string) int32 {
	return int32(uint32(xxhash.Sum64String(s))) //nolint:gosec // intentional truncation
}
