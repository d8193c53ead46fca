package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/streameval/internal/domain"
)

func row(pairs ...float64) domain.SparseVector {
	var v domain.SparseVector
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func matrix(rows ...domain.SparseVector) domain.FeatureMatrix {
	return domain.FeatureMatrix{Rows: rows, Cols: 8}
}

func TestNaiveBayes_Predict(t *testing.T) {
	nb, err := NewNaiveBayes(8, NaiveBayesParams{
		Classes:       []int{0, 1},
		ClassLogPrior: []float64{-0.5, -1},
		FeatureLogProb: []SparseWeights{
			{1: -1, 2: -5},
			{1: -5, 2: -1},
		},
		DefaultLogProb: []float64{-3, -3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := nb.Predict(context.Background(), matrix(row(1, 2), row(2, 2), row()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLinear_Binary(t *testing.T) {
	m, err := NewLinear(8, LinearParams{
		Classes:   []int{0, 1},
		Coef:      []SparseWeights{{3: 2, 4: -2}},
		Intercept: []float64{-0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := m.Predict(context.Background(), matrix(row(3, 1), row(4, 1), row()))
	want := []int{1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLinear_MultiClass(t *testing.T) {
	m, err := NewLinear(8, LinearParams{
		Classes:   []int{0, 1, 2},
		Coef:      []SparseWeights{{0: 1}, {1: 1}, {2: 1}},
		Intercept: []float64{0, 0, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := m.Predict(context.Background(), matrix(row(2, 1), row(1, 1)))
	if got[0] != 2 || got[1] != 1 {
		t.Errorf("got %v", got)
	}
}

func TestLinear_InvalidShape(t *testing.T) {
	_, err := NewLinear(8, LinearParams{Classes: []int{0, 1}, Coef: nil, Intercept: nil})
	if !errors.Is(err, domain.ErrInvalidArtifact) {
		t.Fatalf("expected ErrInvalidArtifact, got %v", err)
	}
}

func TestKMeans_Predict(t *testing.T) {
	m, err := NewKMeans(8, KMeansParams{Centroids: []SparseWeights{{0: 1}, {5: 1}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := m.Predict(context.Background(), matrix(row(5, 0.9), row(0, 1, 5, 0.1)))
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("got %v", got)
	}
}

func TestCheckIndices_OutOfRange(t *testing.T) {
	_, err := NewKMeans(4, KMeansParams{Centroids: []SparseWeights{{7: 1}}})
	if !errors.Is(err, domain.ErrInvalidArtifact) {
		t.Fatalf("expected ErrInvalidArtifact, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	data := []byte(`{
		"kind": "linear",
		"n_features": 8,
		"params": {"classes": [0, 1], "coef": [{"3": 1.5}], "intercept": [0]}
	}`)
	p, kind, err := Decode(data, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != domain.KindLinear {
		t.Errorf("expected linear, got %q", kind)
	}
	got, _ := p.Predict(context.Background(), matrix(row(3, 1)))
	if got[0] != 1 {
		t.Errorf("expected class 1, got %d", got[0])
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{`, domain.ErrInvalidArtifact},
		{"unknown kind", `{"kind":"svm","params":{}}`, domain.ErrUnknownModelKind},
		{"width mismatch", `{"kind":"kmeans","n_features":16,"params":{"centroids":[{}]}}`, domain.ErrInvalidArtifact},
		{"unknown field", `{"kind":"kmeans","params":{"centroids":[{}],"k":2}}`, domain.ErrInvalidArtifact},
		{"bad index", `{"kind":"kmeans","params":{"centroids":[{"x":1}]}}`, domain.ErrInvalidArtifact},
		{"missing params", `{"kind":"kmeans"}`, domain.ErrInvalidArtifact},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tc.data), 8)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kmeans.json")
	if err := os.WriteFile(path, []byte(`{"kind":"kmeans","params":{"centroids":[{"0":1},{"1":1}]}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, kind, err := LoadFile(path, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != domain.KindKMeans {
		t.Errorf("expected kmeans, got %q", kind)
	}

	if _, _, err := LoadFile(filepath.Join(dir, "missing.json"), 8); err == nil {
		t.Fatal("expected error for missing file")
	}
}
