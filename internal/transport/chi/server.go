package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/streameval/internal/domain"
	logpkg "github.com/kailas-cloud/streameval/internal/logger"
	"github.com/kailas-cloud/streameval/internal/metrics"
	healthuc "github.com/kailas-cloud/streameval/internal/usecase/health"
)

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// SummarySource returns the last completed run, if any.
type SummarySource interface {
	Get() (domain.Summary, bool)
}

// RunSource exposes the progress of the run in flight.
type RunSource interface {
	Snapshot() domain.RunState
}

// LabelSource lists the label table shared across batches, in code order.
type LabelSource interface {
	Labels() []string
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// RunResponse is the body of GET /v1/runs/current.
type RunResponse struct {
	Sequence         int      `json:"sequence"`
	BatchesProcessed int      `json:"batches_processed"`
	TargetBatches    int      `json:"target_batches"`
	Progress         float64  `json:"progress"`
	Labels           []string `json:"labels,omitempty"`
}

// Server is the read-only status surface of the evaluator.
type Server struct {
	health  HealthChecker
	latest  SummarySource
	runs    RunSource
	labels  LabelSource
	logger  *zap.Logger
	handler http.Handler
}

// NewServer creates the status server and its router. labels may be nil
// when labels are encoded per batch.
func NewServer(
	health HealthChecker, latest SummarySource, runs RunSource, labels LabelSource, logger *zap.Logger,
) *Server {
	s := &Server{health: health, latest: latest, runs: runs, labels: labels, logger: logger}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/summary/latest", s.LatestSummary)
		r.Get("/runs/current", s.CurrentRun)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	s.handler = r
	return s
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
		logpkg.FromContext(r.Context(), s.logger).Warn("Health check failing",
			zap.String("status", string(report.Status)),
			zap.Any("checks", checks),
		)
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// LatestSummary handles GET /v1/summary/latest.
func (s *Server) LatestSummary(w http.ResponseWriter, _ *http.Request) {
	summary, ok := s.latest.Get()
	if !ok {
		writeError(w, http.StatusNotFound, "summary_not_found", "no run has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CurrentRun handles GET /v1/runs/current.
func (s *Server) CurrentRun(w http.ResponseWriter, _ *http.Request) {
	st := s.runs.Snapshot()
	var progress float64
	if st.TargetBatches > 0 {
		progress = float64(st.BatchesProcessed) / float64(st.TargetBatches)
	}
	resp := RunResponse{
		Sequence:         st.Sequence,
		BatchesProcessed: st.BatchesProcessed,
		TargetBatches:    st.TargetBatches,
		Progress:         progress,
	}
	if s.labels != nil {
		resp.Labels = s.labels.Labels()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
