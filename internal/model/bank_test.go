package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/streameval/internal/domain"
)

type constPredictor struct {
	label int
	calls atomic.Int32
}

func (p *constPredictor) Predict(_ context.Context, x domain.FeatureMatrix) ([]int, error) {
	p.calls.Add(1)
	out := make([]int, x.NumRows())
	for i := range out {
		out[i] = p.label
	}
	return out, nil
}

type failingPredictor struct{ err error }

func (p failingPredictor) Predict(context.Context, domain.FeatureMatrix) ([]int, error) {
	return nil, p.err
}

type panickingPredictor struct{}

func (panickingPredictor) Predict(context.Context, domain.FeatureMatrix) ([]int, error) {
	panic("boom")
}

type shortPredictor struct{}

func (shortPredictor) Predict(context.Context, domain.FeatureMatrix) ([]int, error) {
	return []int{0}, nil
}

func TestNewBank_Validation(t *testing.T) {
	p := &constPredictor{}
	tests := [][]Entry{
		{{ID: "", Predictor: p}},
		{{ID: "a", Predictor: p}, {ID: "a", Predictor: p}},
		{{ID: "a"}},
	}
	for i, entries := range tests {
		if _, err := NewBank(entries, 1); !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestPredictAll_IsolatesFailures(t *testing.T) {
	ok1 := &constPredictor{label: 1}
	ok2 := &constPredictor{label: 0}
	bank, err := NewBank([]Entry{
		{ID: "ok1", Predictor: ok1},
		{ID: "fails", Predictor: failingPredictor{err: errors.New("corrupt weights")}},
		{ID: "panics", Predictor: panickingPredictor{}},
		{ID: "short", Predictor: shortPredictor{}},
		{ID: "ok2", Predictor: ok2},
	}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	x := domain.FeatureMatrix{Rows: make([]domain.SparseVector, 3), Cols: 8}
	preds := bank.PredictAll(context.Background(), x)

	wantIDs := []string{"ok1", "fails", "panics", "short", "ok2"}
	if len(preds) != len(wantIDs) {
		t.Fatalf("expected %d predictions, got %d", len(wantIDs), len(preds))
	}
	for i, id := range wantIDs {
		if preds[i].Entry.ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, preds[i].Entry.ID)
		}
	}
	if preds[0].Err != nil || len(preds[0].Labels) != 3 || preds[0].Labels[0] != 1 {
		t.Errorf("ok1: unexpected result %+v", preds[0])
	}
	if preds[4].Err != nil || len(preds[4].Labels) != 3 {
		t.Errorf("ok2: unexpected result %+v", preds[4])
	}
	for _, i := range []int{1, 2, 3} {
		if !errors.Is(preds[i].Err, domain.ErrPredictionFailure) {
			t.Errorf("%s: expected ErrPredictionFailure, got %v", preds[i].Entry.ID, preds[i].Err)
		}
		if preds[i].Labels != nil {
			t.Errorf("%s: expected no labels", preds[i].Entry.ID)
		}
	}
	var perr *domain.PredictionError
	if !errors.As(preds[1].Err, &perr) || perr.ModelID != "fails" {
		t.Errorf("expected PredictionError for model fails, got %v", preds[1].Err)
	}
}

func TestPredictAll_SequentialWorkers(t *testing.T) {
	p := &constPredictor{label: 2}
	bank, err := NewBank([]Entry{{ID: "a", Predictor: p}, {ID: "b", Predictor: p}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bank.PredictAll(context.Background(), domain.FeatureMatrix{Rows: make([]domain.SparseVector, 1)})
	if p.calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", p.calls.Load())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "per.json")
	art := `{"kind":"linear","params":{"classes":[0,1],"coef":[{"0":1}],"intercept":[0]}}`
	if err := os.WriteFile(path, []byte(art), 0o600); err != nil {
		t.Fatal(err)
	}

	bank, err := Load([]Spec{{ID: "per", Path: path}}, 8, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := bank.Entries()[0]
	if e.Name != "per" || e.Kind != domain.KindLinear || e.Alignment != domain.AlignNone {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestLoad_MajorityAlignmentNeedsClusterModel(t *testing.T) {
	dir := t.TempDir()
	linear := filepath.Join(dir, "per.json")
	kmeans := filepath.Join(dir, "km.json")
	arts := map[string]string{
		linear: `{"kind":"linear","params":{"classes":[0,1],"coef":[{"0":1}],"intercept":[0]}}`,
		kmeans: `{"kind":"kmeans","params":{"centroids":[{"0":1},{"1":1}]}}`,
	}
	for path, art := range arts {
		if err := os.WriteFile(path, []byte(art), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	_, err := Load([]Spec{{ID: "per", Path: linear, Alignment: domain.AlignMajority}}, 8, 1)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for supervised model, got %v", err)
	}

	bank, err := Load([]Spec{{ID: "km", Path: kmeans, Alignment: domain.AlignMajority}}, 8, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e := bank.Entries()[0]; e.Kind.Supervised() || e.Alignment != domain.AlignMajority {
		t.Errorf("unexpected entry %+v", e)
	}
}
