package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates no model can be evaluated.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	models ModelCounter
	sink   Pinger
}

// New creates a Service. sink can be nil when no Redis reporter is configured.
func New(models ModelCounter, sink Pinger) *Service {
	return &Service{models: models, sink: sink}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.models == nil || s.models.Len() == 0 {
		checks["models"] = CheckError
	} else {
		checks["models"] = CheckOK
	}

	if s.sink != nil {
		if err := s.sink.Ping(ctx); err != nil {
			checks["redis"] = CheckError
		} else {
			checks["redis"] = CheckOK
		}
	}

	if checks["models"] == CheckError {
		return Report{Status: Unhealthy, Checks: checks}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
