package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runNamedCheck(s *Service, n int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := 0; i < n; i++ {
		for _, c := range s.checks {
			c.run(context.Background())
		}
	}
}

func TestReadiness_Gate(t *testing.T) {
	s := New()

	assert.False(t, s.IsReady(), "starts not ready")

	s.SetReady(true)
	assert.True(t, s.IsReady())

	s.SetReady(false)
	assert.False(t, s.IsReady(), "drain closes the gate")
}

func TestFailureThreshold(t *testing.T) {
	failing := false
	s := New()
	s.Add(Readiness, "postgres", time.Second, func(context.Context) error {
		if failing {
			return errors.New("connection refused")
		}
		return nil
	})
	s.SetReady(true)

	runNamedCheck(s, 1)
	assert.True(t, s.IsReady())

	// Below the threshold a blip is ignored.
	failing = true
	runNamedCheck(s, failureThreshold-1)
	assert.True(t, s.IsReady())

	runNamedCheck(s, 1)
	assert.False(t, s.IsReady(), "threshold reached")

	// One success recovers.
	failing = false
	runNamedCheck(s, successThreshold)
	assert.True(t, s.IsReady())
}

func TestReadyHandler(t *testing.T) {
	s := New()
	s.Add(Readiness, "postgres", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	s.SetReady(true)
	runNamedCheck(s, failureThreshold)

	rec := httptest.NewRecorder()
	s.ReadyHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres")
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestLiveHandler_IgnoresReadinessChecks(t *testing.T) {
	s := New()
	s.Add(Readiness, "postgres", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	runNamedCheck(s, failureThreshold)

	rec := httptest.NewRecorder()
	s.LiveHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
