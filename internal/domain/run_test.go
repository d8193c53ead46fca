package domain

import (
	"errors"
	"testing"
)

func TestNewRunState(t *testing.T) {
	tests := []struct {
		name         string
		total, batch int
		wantTarget   int
		wantErr      bool
	}{
		{name: "original defaults", total: 3373, batch: 100, wantTarget: 33},
		{name: "exact", total: 200, batch: 100, wantTarget: 2},
		{name: "single batch", total: 100, batch: 100, wantTarget: 1},
		{name: "batch larger than total", total: 50, batch: 100, wantErr: true},
		{name: "zero batch", total: 100, batch: 0, wantErr: true},
		{name: "zero total", total: 0, batch: 10, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewRunState(tt.total, tt.batch)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if st.TargetBatches != tt.wantTarget {
				t.Errorf("target = %d, want %d", st.TargetBatches, tt.wantTarget)
			}
			if st.Sequence != 1 || st.BatchesProcessed != 0 {
				t.Errorf("unexpected initial state %+v", st)
			}
		})
	}
}

func TestRunState_AdvanceAndReset(t *testing.T) {
	st, err := NewRunState(300, 100)
	if err != nil {
		t.Fatal(err)
	}
	if st.Advance() || st.Advance() {
		t.Fatal("run completed early")
	}
	if !st.Advance() {
		t.Fatal("expected run to complete on third batch")
	}
	st.Reset()
	if st.BatchesProcessed != 0 || st.Sequence != 2 || st.TargetBatches != 3 {
		t.Errorf("unexpected state after reset: %+v", st)
	}
}
