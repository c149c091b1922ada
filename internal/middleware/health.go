package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Pinger is anything that can probe a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RemoteAPIHealthChecker checks that the business API answers.
type RemoteAPIHealthChecker struct {
	API     Pinger
	Timeout time.Duration // default 2s
}

func (c *RemoteAPIHealthChecker) Check(ctx context.Context) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.API.Ping(ctx)
}

// HealthStatus is the body of /health. RemoteAPI carries the sync
// counters so a failing check can be read next to the last sync error.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	RemoteAPI RemoteStats            `json:"remote_api"`
}

type CheckStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler runs all checkers in parallel. Any failure turns the
// answer into 503.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now(),
			Checks:    make(map[string]CheckStatus, len(checkers)),
			RemoteAPI: Snapshot().RemoteAPI,
		}

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for name, checker := range checkers {
			wg.Add(1)
			go func(name string, checker HealthChecker) {
				defer wg.Done()
				start := time.Now()
				err := checker.Check(ctx)
				cs := CheckStatus{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
				if err != nil {
					cs.Status = "unhealthy"
					cs.Message = err.Error()
				}

				mu.Lock()
				defer mu.Unlock()
				health.Checks[name] = cs
				if err != nil {
					health.Status = "unhealthy"
				}
			}(name, checker)
		}
		wg.Wait()

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		writeJSON(w, statusCode, health)
	}
}

// ReadinessHandler: the console can serve pages as soon as it listens,
// a failed list only shows up as a notice.
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessHandler answers "ok".
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
