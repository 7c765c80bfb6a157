// Package health exposes liveness and readiness probes. Checks run
// periodically in the background with consecutive-failure thresholds so a
// single blip does not flip the probe.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Kind separates liveness checks (is the process functional) from readiness
// checks (can it serve traffic).
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

// CheckFunc probes one component, returning nil when healthy.
type CheckFunc func(ctx context.Context) error

const (
	failureThreshold = 3
	successThreshold = 1
)

type check struct {
	name    string
	kind    Kind
	timeout time.Duration
	probe   CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// fail/ok streaks are touched only by the single loop goroutine.
	fails int
	oks   int
}

func (c *check) run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.probe(probeCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.oks = 0
		if c.fails++; c.fails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	if c.oks++; c.oks >= successThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) failure() string {
	if c.healthy.Load() {
		return ""
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error()
	}
	return "check is unhealthy"
}

// Service runs registered checks and answers probe requests. It starts
// not-ready; call SetReady(true) once initialization finishes and
// SetReady(false) to drain during shutdown.
type Service struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*check
	cancel context.CancelFunc
}

// New creates an empty health Service.
func New() *Service {
	return &Service{}
}

// Add registers a check. Must be called before Start.
func (s *Service) Add(kind Kind, name string, timeout time.Duration, probe CheckFunc) {
	c := &check{name: name, kind: kind, timeout: timeout, probe: probe}
	c.healthy.Store(true)

	s.mu.Lock()
	s.checks = append(s.checks, c)
	s.mu.Unlock()
}

// Start launches one background goroutine per check, probing at the given
// interval until the context is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := append([]*check(nil), s.checks...)
	s.mu.Unlock()

	for _, c := range checks {
		go func(c *check) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			c.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.run(ctx)
				}
			}
		}(c)
	}
}

// Stop cancels the background probes. Safe to call repeatedly.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the gate is open and every readiness check passes.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}
	return len(s.failures(Readiness)) == 0
}

// LiveHandler serves the liveness probe: 200 when all liveness checks pass,
// 503 with per-check detail otherwise.
func (s *Service) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, s.failures(Liveness))
}

// ReadyHandler serves the readiness probe, honoring the manual gate.
func (s *Service) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	failures := s.failures(Readiness)
	if !s.ready.Load() {
		failures = appendFailure(failures, "_gate", "service is not ready")
	}
	writeStatus(w, failures)
}

func (s *Service) failures(kind Kind) map[string]string {
	s.mu.RLock()
	checks := s.checks
	s.mu.RUnlock()

	var failures map[string]string
	for _, c := range checks {
		if c.kind != kind {
			continue
		}
		if msg := c.failure(); msg != "" {
			failures = appendFailure(failures, c.name, msg)
		}
	}
	return failures
}

func appendFailure(failures map[string]string, name, msg string) map[string]string {
	if failures == nil {
		failures = make(map[string]string)
	}
	failures[name] = msg
	return failures
}

type probeStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := probeStatus{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp = probeStatus{Status: "unhealthy", Checks: failures}
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
