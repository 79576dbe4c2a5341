package handlers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"deckwatch/internal/models"
	"deckwatch/pkg/credentials"
	"deckwatch/pkg/login"
	"deckwatch/pkg/monitor"
)

// Monitor is the slice of the watch loop the API drives.
type Monitor interface {
	Status() monitor.Status
	Check(ctx context.Context) (*monitor.Report, error)
	RefreshSession(ctx context.Context) (*login.Recovery, error)
}

// ManualSignal delivers the operator's login completion.
type ManualSignal interface {
	Done() bool
	Pending() bool
}

// CookieInspector reports on the cookie file.
type CookieInspector interface {
	Stat() (credentials.FileStatus, error)
}

// HistoryReader lists recent check runs.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.CheckRun, error)
}

// Deps are the services behind the handlers. History may be nil.
type Deps struct {
	Monitor Monitor
	Manual  ManualSignal
	Cookies CookieInspector
	History HistoryReader
}

// HandlerService provides HTTP handlers for the API
type HandlerService struct {
	deps      Deps
	ctx       context.Context
	startedAt time.Time
	logger    *zap.Logger

	background sync.WaitGroup
}

// NewHandlerService creates a new handler service. Background work started by
// a request runs with ctx, not the request context.
func NewHandlerService(ctx context.Context, deps Deps, l *zap.Logger) *HandlerService {
	if l == nil {
		l = zap.NewNop()
	}
	l = l.Named("handlers")
	l.Debug("Initializing handler service", zap.Bool("history", deps.History != nil))
	return &HandlerService{
		deps:      deps,
		ctx:       ctx,
		startedAt: time.Now(),
		logger:    l,
	}
}

// Wait blocks until background work started by requests finishes.
func (h *HandlerService) Wait() {
	h.background.Wait()
}

// getCurrentTimestamp 获取当前UTC时间戳
func getCurrentTimestamp() time.Time {
	return time.Now().UTC()
}
