// Package model loads pre-trained predictors and fans batches out to them.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// SparseWeights is a sparse weight row keyed by feature index.
// On disk it is a JSON object whose keys are decimal indices.
type SparseWeights map[int]float64

// UnmarshalJSON decodes {"<index>": weight, ...}.
func (w *SparseWeights) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint:wrapcheck // decoder error carries position
	}
	out := make(SparseWeights, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return fmt.Errorf("feature index %q: %w", k, domain.ErrInvalidArtifact)
		}
		out[idx] = v
	}
	*w = out
	return nil
}

// envelope is the common header of every artifact file.
type envelope struct {
	Kind      domain.ModelKind `json:"kind"`
	NFeatures int              `json:"n_features"`
	Params    json.RawMessage  `json:"params"`
}

// Decoder builds a predictor from the kind-specific params of an artifact.
type Decoder func(nFeatures int, params json.RawMessage) (domain.Predictor, error)

// Decoders is the explicit kind → decoder registry.
var Decoders = map[domain.ModelKind]Decoder{
	domain.KindNaiveBayes: func(n int, raw json.RawMessage) (domain.Predictor, error) {
		var p NaiveBayesParams
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewNaiveBayes(n, p)
	},
	domain.KindLinear: func(n int, raw json.RawMessage) (domain.Predictor, error) {
		var p LinearParams
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewLinear(n, p)
	},
	domain.KindKMeans: func(n int, raw json.RawMessage) (domain.Predictor, error) {
		var p KMeansParams
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, err
		}
		return NewKMeans(n, p)
	},
}

// strictUnmarshal rejects unknown fields so typos in artifacts surface at startup.
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing params: %w", domain.ErrInvalidArtifact)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode params: %w: %w", domain.ErrInvalidArtifact, err)
	}
	return nil
}

// Decode parses an artifact and returns its predictor and kind.
// nFeatures must match the artifact's declared width when both are set.
func Decode(data []byte, nFeatures int) (domain.Predictor, domain.ModelKind, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("decode artifact: %w: %w", domain.ErrInvalidArtifact, err)
	}
	dec, ok := Decoders[env.Kind]
	if !ok {
		return nil, "", fmt.Errorf("%q: %w", env.Kind, domain.ErrUnknownModelKind)
	}
	if env.NFeatures != 0 && nFeatures != 0 && env.NFeatures != nFeatures {
		return nil, "", fmt.Errorf(
			"artifact expects %d features, vectorizer produces %d: %w",
			env.NFeatures, nFeatures, domain.ErrInvalidArtifact,
		)
	}
	p, err := dec(nFeatures, env.Params)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", env.Kind, err)
	}
	return p, env.Kind, nil
}

// LoadFile reads and decodes one artifact from disk.
func LoadFile(path string, nFeatures int) (domain.Predictor, domain.ModelKind, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("read artifact %s: %w", path, err)
	}
	p, kind, err := Decode(data, nFeatures)
	if err != nil {
		return nil, "", fmt.Errorf("load artifact %s: %w", path, err)
	}
	return p, kind, nil
}
