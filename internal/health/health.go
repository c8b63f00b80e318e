package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Result is one check's outcome.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Check probes one dependency.
type Check interface {
	Name() string
	Check(ctx context.Context) Result
}

type funcCheck struct {
	name string
	fn   func(ctx context.Context) Result
}

func (c funcCheck) Name() string                     { return c.name }
func (c funcCheck) Check(ctx context.Context) Result { return c.fn(ctx) }

// NewCheck wraps a plain function as a Check.
func NewCheck(name string, fn func(ctx context.Context) Result) Check {
	return funcCheck{name: name, fn: fn}
}

// Pinger is a dependency that can probe its backing connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingCheck builds a check that is healthy when the ping succeeds.
func NewPingCheck(name string, pinger Pinger) Check {
	return NewCheck(name, func(ctx context.Context) Result {
		if err := pinger.Ping(ctx); err != nil {
			return Result{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Result{Status: StatusHealthy}
	})
}

// Checker fans registered checks out in parallel and aggregates the
// results.
type Checker struct {
	mu     sync.RWMutex
	checks []Check
}

func NewChecker() *Checker {
	return &Checker{checks: make([]Check, 0)}
}

func (c *Checker) Register(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// Check runs every registered check concurrently and returns the results
// keyed by check name.
func (c *Checker) Check(ctx context.Context) map[string]Result {
	c.mu.RLock()
	checks := make([]Check, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	results := make(map[string]Result, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, check := range checks {
		wg.Add(1)
		go func(ch Check) {
			defer wg.Done()
			start := time.Now()
			result := ch.Check(ctx)
			result.Name = ch.Name()
			result.Duration = time.Since(start)
			mu.Lock()
			results[ch.Name()] = result
			mu.Unlock()
		}(check)
	}
	wg.Wait()

	return results
}

// Overall folds individual results into one status. Any unhealthy check
// wins; otherwise any degraded check downgrades the whole.
func (c *Checker) Overall(results map[string]Result) Status {
	hasDegraded := false
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			hasDegraded = true
		}
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// HTTPHandler serves the health report. Unhealthy maps to 503 so load
// balancers can act on the status code alone.
func (c *Checker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		results := c.Check(ctx)
		overall := c.Overall(results)

		response := map[string]interface{}{
			"status":    overall,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    results,
		}

		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if overall == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(response)
	}
}
