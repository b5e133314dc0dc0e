package metrics

import (
	"sync/atomic"
	"time"
)

// Registry owns the request/error counter pair and the process start time.
// It is constructed once in main and injected wherever counting happens;
// nothing here is a package-level global. Atomics keep it safe for any
// number of in-flight requests.
type Registry struct {
	start    time.Time
	requests atomic.Int64
	errors   atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{start: time.Now()}
}

func (r *Registry) IncRequests() { r.requests.Add(1) }
func (r *Registry) IncErrors()   { r.errors.Add(1) }

type Snapshot struct {
	UptimeSeconds int64   `json:"uptime_seconds"`
	RequestsTotal int64   `json:"requests_total"`
	ErrorsTotal   int64   `json:"errors_total"`
	SuccessRate   float64 `json:"success_rate"`
}

// Snapshot returns the current counters. Success rate is a percentage and
// reads 100 before any traffic has arrived.
func (r *Registry) Snapshot() Snapshot {
	requests := r.requests.Load()
	errs := r.errors.Load()

	rate := 100.0
	if requests > 0 {
		rate = float64(requests-errs) / float64(requests) * 100
	}

	return Snapshot{
		UptimeSeconds: int64(time.Since(r.start).Seconds()),
		RequestsTotal: requests,
		ErrorsTotal:   errs,
		SuccessRate:   rate,
	}
}
