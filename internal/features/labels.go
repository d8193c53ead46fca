package features

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// EncodeLabels assigns dense codes to the distinct labels of one call, in
// sorted label order. Codes are only stable within this call.
func EncodeLabels(labels []string) domain.LabelVector {
	distinct := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		distinct[l] = struct{}{}
	}
	sorted := make([]string, 0, len(distinct))
	for l := range distinct {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)

	codes := make(map[string]int, len(sorted))
	for i, l := range sorted {
		codes[l] = i
	}
	out := make(domain.LabelVector, len(labels))
	for i, l := range labels {
		out[i] = codes[l]
	}
	return out
}

// LabelEncoder turns label strings into integer codes.
type LabelEncoder interface {
	Encode(labels []string) domain.LabelVector
}

// PerBatchEncoder re-derives codes on every call.
type PerBatchEncoder struct{}

// Encode implements LabelEncoder.
func (PerBatchEncoder) Encode(labels []string) domain.LabelVector { return EncodeLabels(labels) }

// LabelTable is a process-wide label table: once a label has a code it keeps
// it for the life of the table.
type LabelTable struct {
	mu     sync.Mutex
	codes  map[string]int
	logger *zap.Logger
}

// NewLabelTable seeds the table with the known labels in sorted order, which
// reproduces the codes a per-batch encoder would assign when every batch
// carries the full label set.
func NewLabelTable(known []string, logger *zap.Logger) *LabelTable {
	t := &LabelTable{codes: make(map[string]int), logger: logger}
	seed := append([]string(nil), known...)
	sort.Strings(seed)
	for _, l := range seed {
		if _, ok := t.codes[l]; !ok {
			t.codes[l] = len(t.codes)
		}
	}
	return t
}

// Encode implements LabelEncoder. Unknown labels get the next free code.
func (t *LabelTable) Encode(labels []string) domain.LabelVector {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(domain.LabelVector, len(labels))
	for i, l := range labels {
		code, ok := t.codes[l]
		if !ok {
			code = len(t.codes)
			t.codes[l] = code
			t.logger.Warn("Unseen label added to label table",
				zap.String("label", l),
				zap.Int("code", code),
			)
		}
		out[i] = code
	}
	return out
}

// Labels returns the labels ordered by code.
func (t *LabelTable) Labels() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.codes))
	for l, c := range t.codes {
		out[c] = l
	}
	return out
}
