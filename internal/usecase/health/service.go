package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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
	db    DBPinger
	index IndexChecker
}

// New creates a Service. index can be nil.
func New(db DBPinger, index IndexChecker) *Service {
	return &Service{db: db, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["storage"] = CheckError
	} else {
		checks["storage"] = CheckOK
	}

	// Without an index every query is empty; selections still work.
	if s.index != nil {
		if s.index.Ready() {
			checks["index"] = CheckOK
		} else {
			checks["index"] = CheckError
		}
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
