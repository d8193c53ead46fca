package model

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/streameval/internal/domain"
	"github.com/kailas-cloud/streameval/internal/features"
)

// The demo artifacts under models/ must load and separate obvious spam from ham.
func TestLoad_DemoArtifacts(t *testing.T) {
	dir := filepath.Join("..", "..", "models")
	specs := []Spec{
		{ID: "mnb", Name: "Multinomial NB", Path: filepath.Join(dir, "mnb.json")},
		{ID: "per", Name: "Perceptron", Path: filepath.Join(dir, "per.json")},
		{ID: "sgd", Name: "SGD Classifier", Path: filepath.Join(dir, "sgd.json")},
		{ID: "kmeans", Name: "K-Means", Path: filepath.Join(dir, "kmeans.json"), Alignment: domain.AlignNone},
	}

	vec, err := features.NewHashingVectorizer(features.Config{})
	if err != nil {
		t.Fatalf("vectorizer: %v", err)
	}
	bank, err := Load(specs, vec.NFeatures(), 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	x := vec.Vectorize([]string{"win free cash prize", "lunch tomorrow home"})
	for _, p := range bank.PredictAll(context.Background(), x) {
		if p.Err != nil {
			t.Fatalf("%s: %v", p.Entry.ID, p.Err)
		}
		if p.Labels[0] != 1 || p.Labels[1] != 0 {
			t.Errorf("%s: got %v, want [1 0]", p.Entry.ID, p.Labels)
		}
	}
}
