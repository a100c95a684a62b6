package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func down(msg string) Checker {
	return func(context.Context) error { return errors.New(msg) }
}

func doCheck(t *testing.T, hf http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	hf.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Timestamp.IsZero())
	return rec.Code, resp
}

func TestLivenessHandler(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", down("connection refused"))

	code, resp := doCheck(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name        string
		critical    map[string]Checker
		nonCritical map[string]Checker
		wantCode    int
		wantStatus  Status
	}{
		{
			name:       "no checks",
			wantCode:   http.StatusOK,
			wantStatus: StatusUp,
		},
		{
			name:        "all up",
			critical:    map[string]Checker{"postgres": up, "redis": up},
			nonCritical: map[string]Checker{"kafka": up},
			wantCode:    http.StatusOK,
			wantStatus:  StatusUp,
		},
		{
			name:        "non-critical down",
			critical:    map[string]Checker{"postgres": up},
			nonCritical: map[string]Checker{"kafka": down("broker unreachable")},
			wantCode:    http.StatusOK,
			wantStatus:  StatusDegraded,
		},
		{
			name:       "critical down",
			critical:   map[string]Checker{"postgres": up, "redis": down("connection refused")},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDown,
		},
		{
			name:        "critical and non-critical down",
			critical:    map[string]Checker{"postgres": down("db down")},
			nonCritical: map[string]Checker{"kafka": down("kafka down")},
			wantCode:    http.StatusServiceUnavailable,
			wantStatus:  StatusDown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			for name, fn := range tt.critical {
				h.RegisterCritical(name, fn)
			}
			for name, fn := range tt.nonCritical {
				h.RegisterNonCritical(name, fn)
			}

			code, resp := doCheck(t, h.ReadinessHandler())

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.critical)+len(tt.nonCritical))
			for name := range tt.critical {
				assert.True(t, resp.Checks[name].Critical, name)
			}
			for name := range tt.nonCritical {
				assert.False(t, resp.Checks[name].Critical, name)
			}
		})
	}
}

func TestReadinessHandler_ReportsError(t *testing.T) {
	h := NewHandler()
	h.Register("redis", down("dial tcp 127.0.0.1:6379: connection refused"))

	_, resp := doCheck(t, h.ReadinessHandler())

	assert.Equal(t, CheckResult{
		Status:   StatusDown,
		Critical: true,
		Error:    "dial tcp 127.0.0.1:6379: connection refused",
	}, resp.Checks["redis"])
}

func TestRegister_ReplacesByName(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", down("fail"))
	h.RegisterNonCritical("postgres", down("still failing"))

	code, resp := doCheck(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestReadinessHandler_ChecksRunConcurrently(t *testing.T) {
	h := NewHandler()
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)
	wait := func(ctx context.Context) error {
		started.Done()
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.Register("postgres", wait)
	h.Register("redis", wait)

	go func() {
		started.Wait()
		close(release)
	}()

	done := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		done <- rec.Code
	}()

	select {
	case code := <-done:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("checks did not run concurrently")
	}
}
