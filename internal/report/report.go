// Package report delivers completed runs to their sinks.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streameval/internal/domain"
	"github.com/kailas-cloud/streameval/internal/metrics"
)

// Reporter receives each completed run. Implementations must not modify s.
type Reporter interface {
	Report(ctx context.Context, s domain.Summary) error
}

// Named pairs a reporter with the name used in logs and metrics.
type Named struct {
	Name     string
	Reporter Reporter
}

// Multi fans a summary out to every sink. A failing sink does not stop the
// others; their errors are joined.
type Multi struct {
	sinks []Named
}

// NewMulti creates a fan-out reporter.
func NewMulti(sinks ...Named) *Multi {
	return &Multi{sinks: sinks}
}

// Add appends a sink.
func (m *Multi) Add(name string, r Reporter) *Multi {
	m.sinks = append(m.sinks, Named{Name: name, Reporter: r})
	return m
}

// Report implements Reporter.
func (m *Multi) Report(ctx context.Context, s domain.Summary) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Reporter.Report(ctx, s); err != nil {
			metrics.ReportErrorsTotal.WithLabelValues(sink.Name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Log writes one structured line per series.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log reporter.
func NewLog(logger *zap.Logger) *Log { return &Log{logger: logger} }

// Report implements Reporter.
func (l *Log) Report(_ context.Context, s domain.Summary) error {
	for _, series := range s.Series {
		l.logger.Info("Accuracy series",
			zap.String("run_id", s.RunID),
			zap.Int("run", s.Sequence),
			zap.String("model", series.ModelID),
			zap.String("name", series.Name),
			zap.Float64s("accuracy", series.Accuracy),
			zap.Float64("mean_accuracy", mean(series.Accuracy)),
		)
	}
	return nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Latest keeps the most recent summary for readers such as the HTTP server.
type Latest struct {
	mu      sync.RWMutex
	summary domain.Summary
	ok      bool
}

// NewLatest creates an empty holder.
func NewLatest() *Latest { return &Latest{} }

// Report implements Reporter.
func (l *Latest) Report(_ context.Context, s domain.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summary = s
	l.ok = true
	return nil
}

// Get returns the last summary, if any run has completed.
func (l *Latest) Get() (domain.Summary, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.summary, l.ok
}
