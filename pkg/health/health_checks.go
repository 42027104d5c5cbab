package health

import "time"

// Common health check functions

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// SourceCheck creates a health check for data source connectivity
func SourceCheck(pingFunc func() error) CheckFunc {
	return func() Check {
		check := Check{
			Name: "source",
		}

		if err := pingFunc(); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Reachable"
		}

		return check
	}
}

// FreshnessCheck creates a health check for data freshness. A source that
// serves held or snapshot tables after an upstream failure reports stale.
func FreshnessCheck(isStale func() bool) CheckFunc {
	return func() Check {
		check := Check{
			Name: "freshness",
		}

		if isStale() {
			check.Status = StatusDegraded
			check.Message = "Serving stale tables"
		} else {
			check.Status = StatusHealthy
			check.Message = "Tables current"
		}

		return check
	}
}

// GraphCheck creates a health check for the assembled graph
func GraphCheck(getGraphState func() (vertices, edges, warnings int, builtAt time.Time)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "graph",
			Details: make(map[string]any),
		}

		vertices, edges, warnings, builtAt := getGraphState()

		check.Details["vertices"] = vertices
		check.Details["edges"] = edges
		check.Details["warnings"] = warnings
		if !builtAt.IsZero() {
			check.Details["built_at"] = builtAt
		}

		if builtAt.IsZero() {
			check.Status = StatusUnhealthy
			check.Message = "No graph assembled"
		} else if warnings > 0 {
			check.Status = StatusDegraded
			check.Message = "Assembly produced warnings"
		} else {
			check.Status = StatusHealthy
			check.Message = "Graph assembled"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		usagePercent := float64(alloc) / float64(sys) * 100

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
