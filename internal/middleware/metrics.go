package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// SyncStats counts calls of one kind made to the business API.
type SyncStats struct {
	Total  uint64 `json:"total"`
	Failed uint64 `json:"failed"`
}

// RequestStats counts requests served by the console.
type RequestStats struct {
	Total    uint64 `json:"total"`
	InFlight int64  `json:"in_flight"`
	Failed   uint64 `json:"failed"`
}

// RemoteStats describes the traffic to the business API.
type RemoteStats struct {
	Calls     map[string]SyncStats `json:"calls"`
	LastSync  *time.Time           `json:"last_sync,omitempty"`
	LastError string               `json:"last_error,omitempty"`
}

// MetricsSnapshot is what /metrics returns.
type MetricsSnapshot struct {
	Requests      RequestStats `json:"requests"`
	RemoteAPI     RemoteStats  `json:"remote_api"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	Goroutines    int          `json:"goroutines"`
	AllocBytes    uint64       `json:"alloc_bytes"`
}

type metrics struct {
	start    time.Time
	requests atomic.Uint64
	inFlight atomic.Int64
	failed   atomic.Uint64

	mu       sync.Mutex
	calls    map[string]SyncStats
	lastSync time.Time
	lastErr  string
}

var globalMetrics = &metrics{
	start: time.Now(),
	calls: make(map[string]SyncStats),
}

// RecordSync counts one call to the business API. op names the call
// (list, create, update, delete).
func RecordSync(op string, err error) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	st := globalMetrics.calls[op]
	st.Total++
	globalMetrics.lastSync = time.Now()
	if err != nil {
		st.Failed++
		globalMetrics.lastErr = op + ": " + err.Error()
	} else if op == "list" {
		// a good list means the API is back
		globalMetrics.lastErr = ""
	}
	globalMetrics.calls[op] = st
}

// Snapshot returns the current counters.
func Snapshot() MetricsSnapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := MetricsSnapshot{
		Requests: RequestStats{
			Total:    globalMetrics.requests.Load(),
			InFlight: globalMetrics.inFlight.Load(),
			Failed:   globalMetrics.failed.Load(),
		},
		UptimeSeconds: time.Since(globalMetrics.start).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		AllocBytes:    mem.Alloc,
	}

	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	snap.RemoteAPI.Calls = make(map[string]SyncStats, len(globalMetrics.calls))
	for op, st := range globalMetrics.calls {
		snap.RemoteAPI.Calls[op] = st
	}
	if !globalMetrics.lastSync.IsZero() {
		at := globalMetrics.lastSync
		snap.RemoteAPI.LastSync = &at
	}
	snap.RemoteAPI.LastError = globalMetrics.lastErr
	return snap
}

// MetricsMiddleware counts requests. Redirects after a form post count as
// success.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.requests.Add(1)
		globalMetrics.inFlight.Add(1)
		defer globalMetrics.inFlight.Add(-1)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if statusOf(ww) >= 400 {
			globalMetrics.failed.Add(1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Snapshot())
}

// statusOf reads the status of a wrapped writer; a handler that never
// called WriteHeader answered 200.
func statusOf(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
