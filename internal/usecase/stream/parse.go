package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// wireRecord distinguishes absent fields from empty strings.
type wireRecord struct {
	Feature0 *string `json:"feature0"`
	Feature1 *string `json:"feature1"`
	Feature2 *string `json:"feature2"`
}

// ParseBatch decodes a delivery: a JSON object whose values are records.
// Keys only fix the processing order (numeric keys numerically first).
// A blank payload is an empty batch. Records that are not objects or lack a
// string field are skipped and counted; the rest of the batch survives.
func ParseBatch(payload []byte) (domain.Batch, []error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return domain.Batch{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.Batch{}, []error{fmt.Errorf("%w: %w", domain.ErrMalformedBatch, err)}
	}
	if raw == nil {
		return domain.Batch{}, []error{fmt.Errorf("payload is null: %w", domain.ErrMalformedBatch)}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sortKeys(keys)

	var (
		batch domain.Batch
		errs  []error
	)
	batch.Records = make([]domain.Record, 0, len(keys))
	for _, k := range keys {
		rec, err := parseRecord(raw[k])
		if err != nil {
			batch.Skipped++
			errs = append(errs, fmt.Errorf("record %q: %w", k, err))
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, errs
}

func parseRecord(data json.RawMessage) (domain.Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.Record{}, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}
	if w.Feature0 == nil || w.Feature1 == nil || w.Feature2 == nil {
		return domain.Record{}, fmt.Errorf("missing field: %w", domain.ErrMalformedRecord)
	}
	return domain.Record{Feature0: *w.Feature0, Feature1: *w.Feature1, Feature2: *w.Feature2}, nil
}

func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return keys[i] < keys[j] // "1" and "01"
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
