package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"deckwatch/internal/models"
	"deckwatch/pkg/browser"
	"deckwatch/pkg/credentials"
	"deckwatch/pkg/history"
	"deckwatch/pkg/login"
	"deckwatch/pkg/monitor"
)

type fakeMonitor struct {
	mu         sync.Mutex
	status     monitor.Status
	report     *monitor.Report
	checkErr   error
	refreshErr error
	refreshes  int
}

func (f *fakeMonitor) Status() monitor.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeMonitor) Check(context.Context) (*monitor.Report, error) {
	return f.report, f.checkErr
}

func (f *fakeMonitor) RefreshSession(context.Context) (*login.Recovery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &login.Recovery{Strategy: "saved-cookies"}, nil
}

func (f *fakeMonitor) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

type fakeCookies struct {
	status credentials.FileStatus
	err    error
}

func (f fakeCookies) Stat() (credentials.FileStatus, error) { return f.status, f.err }

type fakeHistory struct {
	runs      []models.CheckRun
	err       error
	lastLimit int
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]models.CheckRun, error) {
	f.lastLimit = limit
	return f.runs, f.err
}

func newTestRouter(t *testing.T, deps Deps) (*gin.Engine, *HandlerService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandlerService(context.Background(), deps, zaptest.NewLogger(t))
	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/status", h.GetStatus)
	r.POST("/check", h.TriggerCheck)
	r.POST("/session/refresh", h.RefreshSession)
	r.POST("/session/done", h.CompleteLogin)
	r.GET("/session/cookies", h.GetCookieStatus)
	r.GET("/history", h.GetHistory)
	return r, h
}

func do(r http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy with session", func(t *testing.T) {
		r, _ := newTestRouter(t, Deps{
			Cookies: fakeCookies{status: credentials.FileStatus{Exists: true, Authenticated: true}},
			Monitor: &fakeMonitor{status: monitor.Status{Running: true}},
		})
		w, body := do(r, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, ServiceName, body["service"])
	})

	t.Run("missing session is degraded", func(t *testing.T) {
		r, _ := newTestRouter(t, Deps{Cookies: fakeCookies{}})
		w, body := do(r, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "degraded", checks["cookies"].(map[string]any)["status"])
	})

	t.Run("unreadable cookie file", func(t *testing.T) {
		r, _ := newTestRouter(t, Deps{Cookies: fakeCookies{err: errors.New("permission denied")}})
		w, body := do(r, http.MethodGet, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", body["status"])
	})
}

func TestGetStatus(t *testing.T) {
	manual := login.NewManualSignal()
	r, _ := newTestRouter(t, Deps{
		Monitor: &fakeMonitor{status: monitor.Status{Running: true, Checks: 3, LastOutcome: monitor.OutcomeNoneInStock}},
		Manual:  manual,
	})

	w, body := do(r, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["manual_login_pending"])

	mon := body["monitor"].(map[string]any)
	assert.Equal(t, true, mon["running"])
	assert.EqualValues(t, 3, mon["checks"])
	assert.Equal(t, string(monitor.OutcomeNoneInStock), mon["last_outcome"])
}

func TestGetStatusWithoutMonitor(t *testing.T) {
	r, _ := newTestRouter(t, Deps{})
	w, _ := do(r, http.MethodGet, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTriggerCheck(t *testing.T) {
	t.Run("returns report", func(t *testing.T) {
		mon := &fakeMonitor{report: &monitor.Report{ID: "abc", Outcome: monitor.OutcomeAvailable, Qualifying: 1}}
		r, _ := newTestRouter(t, Deps{Monitor: mon})
		w, body := do(r, http.MethodPost, "/check")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc", body["id"])
		assert.Equal(t, string(monitor.OutcomeAvailable), body["outcome"])
	})

	t.Run("failed check still returns report", func(t *testing.T) {
		mon := &fakeMonitor{
			report:   &monitor.Report{ID: "def", Outcome: monitor.OutcomeError, Error: "boom"},
			checkErr: errors.New("boom"),
		}
		r, _ := newTestRouter(t, Deps{Monitor: mon})
		w, body := do(r, http.MethodPost, "/check")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "boom", body["error"])
	})

	t.Run("busy", func(t *testing.T) {
		mon := &fakeMonitor{checkErr: monitor.ErrCheckInProgress}
		r, _ := newTestRouter(t, Deps{Monitor: mon})
		w, body := do(r, http.MethodPost, "/check")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, true, body["error"])
	})
}

func TestRefreshSession(t *testing.T) {
	t.Run("accepted and runs in background", func(t *testing.T) {
		mon := &fakeMonitor{}
		r, h := newTestRouter(t, Deps{Monitor: mon})
		w, body := do(r, http.MethodPost, "/session/refresh")
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "accepted", body["status"])

		h.Wait()
		assert.Equal(t, 1, mon.refreshCount())
	})

	t.Run("background failure is logged only", func(t *testing.T) {
		mon := &fakeMonitor{refreshErr: errors.New("all strategies failed")}
		r, h := newTestRouter(t, Deps{Monitor: mon})
		w, _ := do(r, http.MethodPost, "/session/refresh")
		assert.Equal(t, http.StatusAccepted, w.Code)
		h.Wait()
		assert.Equal(t, 1, mon.refreshCount())
	})

	t.Run("conflict while a check runs", func(t *testing.T) {
		mon := &fakeMonitor{status: monitor.Status{InProgress: true}}
		r, h := newTestRouter(t, Deps{Monitor: mon})
		w, _ := do(r, http.MethodPost, "/session/refresh")
		assert.Equal(t, http.StatusConflict, w.Code)
		h.Wait()
		assert.Zero(t, mon.refreshCount())
	})
}

func TestCompleteLogin(t *testing.T) {
	manual := login.NewManualSignal()
	r, _ := newTestRouter(t, Deps{Manual: manual})

	w, _ := do(r, http.MethodPost, "/session/done")
	assert.Equal(t, http.StatusConflict, w.Code, "nothing waiting")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	waited := make(chan error, 1)
	go func() { waited <- manual.Wait(ctx) }()
	require.Eventually(t, manual.Pending, time.Second, 5*time.Millisecond)

	w, body := do(r, http.MethodPost, "/session/done")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "delivered", body["status"])
	assert.NoError(t, <-waited)
}

func TestGetCookieStatus(t *testing.T) {
	mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r, _ := newTestRouter(t, Deps{Cookies: fakeCookies{status: credentials.FileStatus{
		Path: "cookies.json", Exists: true, Size: 512, ModTime: mod, Count: 4, Authenticated: true,
	}}})

	w, body := do(r, http.MethodGet, "/session/cookies")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cookies.json", body["path"])
	assert.EqualValues(t, 4, body["count"])
	assert.Equal(t, true, body["authenticated"])
}

func TestGetHistory(t *testing.T) {
	hist := &fakeHistory{runs: []models.CheckRun{
		{CheckID: "b", Outcome: models.CheckOutcomeNoneInStock},
		{CheckID: "a", Outcome: models.CheckOutcomeAvailable},
	}}
	r, _ := newTestRouter(t, Deps{History: hist})

	w, body := do(r, http.MethodGet, "/history")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, history.DefaultLimit, hist.lastLimit)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["count"])

	w, _ = do(r, http.MethodGet, "/history?limit=5")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, hist.lastLimit)

	for _, bad := range []string{"0", "-1", "abc", "100000"} {
		w, _ = do(r, http.MethodGet, "/history?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestGetHistoryDisabled(t *testing.T) {
	r, _ := newTestRouter(t, Deps{})
	w, _ := do(r, http.MethodGet, "/history")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var store *history.Store
	r, _ = newTestRouter(t, Deps{History: store})
	w, _ = do(r, http.MethodGet, "/history")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"busy check", fmt.Errorf("trigger: %w", monitor.ErrCheckInProgress), http.StatusConflict},
		{"profile locked", browser.ErrProfileInUse, http.StatusConflict},
		{"slow page", fmt.Errorf("%w: ready signal", browser.ErrNavigationTimeout), http.StatusGatewayTimeout},
		{"history off", history.ErrDisabled, http.StatusServiceUnavailable},
		{"api error", NewBadRequestError("bad limit", ErrInvalidParam), http.StatusBadRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			HandleError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}
