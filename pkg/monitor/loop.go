package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"deckwatch/pkg/credentials"
	"deckwatch/pkg/logger"
	"deckwatch/pkg/login"
	"deckwatch/pkg/notifier"
	"deckwatch/pkg/scheduler"
	"deckwatch/pkg/stock"
)

// Extractor runs one extraction pass.
type Extractor interface {
	Extract(ctx context.Context) (*stock.Result, error)
}

// Recoverer reacquires an authenticated session. login.Chain implements it.
type Recoverer interface {
	Recover(ctx context.Context) (*login.Recovery, error)
}

// Releaser frees the shared browser before recovery launches its own.
type Releaser interface {
	Release()
}

// CookieSaver persists recovered cookies.
type CookieSaver interface {
	Save(set credentials.CookieSet) error
}

// Recorder stores finished checks.
type Recorder interface {
	RecordCheck(ctx context.Context, r *Report) error
}

// Config holds loop settings.
type Config struct {
	Interval      time.Duration
	AlertThrottle time.Duration
	NotifyTimeout time.Duration
	TargetURL     string
	// StartupNotice sends a message when Run starts.
	StartupNotice bool
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 15 * time.Minute
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 30 * time.Second
	}
	return c
}

// Deps are the collaborators of a Loop. Recovery, Browser, Cookies and
// Recorder may be nil.
type Deps struct {
	Extractor Extractor
	Recovery  Recoverer
	Browser   Releaser
	Cookies   CookieSaver
	Notifier  notifier.Notifier
	Recorder  Recorder
}

// Loop runs guarded stock checks, recovers the session when a check fails
// and notifies the operator.
type Loop struct {
	cfg  Config
	deps Deps
	now  func() time.Time

	inProgress atomic.Bool
	running    atomic.Bool

	stockLimiter *rate.Limiter
	alertLimiter *rate.Limiter

	wg sync.WaitGroup

	mu     sync.RWMutex
	status Status
	sched  *scheduler.Scheduler
	jobID  string

	logger *zap.Logger
}

// New creates a loop.
func New(cfg Config, deps Deps, l *zap.Logger) *Loop {
	if l == nil {
		l = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Loop{
		cfg:          cfg,
		deps:         deps,
		now:          time.Now,
		stockLimiter: newThrottle(cfg.AlertThrottle),
		alertLimiter: newThrottle(cfg.AlertThrottle),
		status:       Status{Interval: cfg.Interval},
		logger:       l.Named("monitor"),
	}
}

// SetClock replaces the clock used for throttling and timestamps.
func (l *Loop) SetClock(now func() time.Time) {
	l.now = now
}

func newThrottle(window time.Duration) *rate.Limiter {
	if window <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(window), 1)
}

// Check runs one extraction, recovering the session once if it fails.
// The returned report is nil only when another check is in progress.
func (l *Loop) Check(ctx context.Context) (*Report, error) {
	if !l.inProgress.CompareAndSwap(false, true) {
		return nil, ErrCheckInProgress
	}
	defer l.inProgress.Store(false)

	report := &Report{ID: uuid.NewString(), StartedAt: l.now()}
	ctx = logger.WithCheckID(ctx, report.ID)
	log := logger.FromContext(ctx, l.logger)
	log.Info("Checking stock", zap.Time("started_at", report.StartedAt))

	res, err := l.deps.Extractor.Extract(ctx)
	if err != nil && ctx.Err() == nil {
		log.Warn("Extraction failed, recovering session", logger.ErrorField(err))
		rec, rerr := l.recoverSession(ctx)
		if rerr != nil {
			err = errors.Join(err, rerr)
			l.alert(recoveryFailedMessage(rerr), log)
		} else {
			report.Recovered = rec.Strategy
			res, err = l.deps.Extractor.Extract(ctx)
			if err != nil {
				log.Error("Extraction failed after session renewal", logger.ErrorField(err))
				l.alert(checkFailedMessage(err), log)
			}
		}
	}

	if res != nil && err == nil {
		report.Entries = res.Entries
		report.LoggedIn = res.LoggedIn
		report.Account = res.Account
		qualifying := stock.Qualifying(res.Entries)
		report.Qualifying = len(qualifying)
		if len(qualifying) > 0 {
			report.Notified = l.notifyStock(qualifying, log)
		}
	}

	report.Err = err
	if err != nil {
		report.Error = err.Error()
	}
	report.Duration = l.now().Sub(report.StartedAt)
	report.Outcome = outcomeOf(report.Entries, err)
	report.ExitCode = stock.ExitCode(report.Entries, err, false)
	l.finish(report)

	fields := []zap.Field{
		zap.String("outcome", string(report.Outcome)),
		logger.CountField(len(report.Entries)),
		zap.Int("qualifying", report.Qualifying),
		logger.DurationField(report.Duration),
	}
	if err != nil {
		log.Error("Check failed", append(fields, logger.ErrorField(err))...)
	} else {
		log.Info("Check finished", fields...)
	}

	if l.deps.Recorder != nil {
		if rerr := l.deps.Recorder.RecordCheck(ctx, report); rerr != nil {
			log.Warn("Failed to record check", logger.ErrorField(rerr))
		}
	}
	return report, err
}

// RefreshSession runs the recovery chain outside a check. It shares the
// in-progress guard with Check.
func (l *Loop) RefreshSession(ctx context.Context) (*login.Recovery, error) {
	if !l.inProgress.CompareAndSwap(false, true) {
		return nil, ErrCheckInProgress
	}
	defer l.inProgress.Store(false)

	rec, err := l.recoverSession(ctx)
	if err != nil {
		l.alert(recoveryFailedMessage(err), l.logger)
		return nil, err
	}
	return rec, nil
}

func (l *Loop) recoverSession(ctx context.Context) (*login.Recovery, error) {
	log := logger.FromContext(ctx, l.logger)
	if l.deps.Recovery == nil {
		return nil, fmt.Errorf("%w: no recovery strategies configured", ErrRecoveryExhausted)
	}
	if l.deps.Browser != nil {
		l.deps.Browser.Release()
	}

	start := l.now()
	rec, err := l.deps.Recovery.Recover(ctx)
	if err != nil {
		l.mu.Lock()
		l.status.Failures++
		l.mu.Unlock()
		log.Error("Session recovery exhausted", logger.ErrorField(err), logger.DurationField(l.now().Sub(start)))
		return nil, fmt.Errorf("%w: %w", ErrRecoveryExhausted, err)
	}

	if l.deps.Cookies != nil {
		if serr := l.deps.Cookies.Save(rec.Cookies); serr != nil {
			log.Warn("Failed to save recovered cookies", logger.ErrorField(serr))
		}
	}
	l.mu.Lock()
	l.status.Recoveries++
	l.mu.Unlock()

	log.Info("Session renewed", logger.StrategyField(rec.Strategy), logger.DurationField(l.now().Sub(start)))
	l.send(notifier.Message{Text: renewedMessage(rec.Strategy)}, log)
	return rec, nil
}

func (l *Loop) notifyStock(qualifying []stock.Entry, log *zap.Logger) bool {
	if !l.stockLimiter.AllowN(l.now(), 1) {
		log.Info("Stock alert suppressed by throttle", zap.Int("qualifying", len(qualifying)))
		l.mu.Lock()
		l.status.AlertsThrottled++
		l.mu.Unlock()
		return false
	}
	l.send(notifier.Message{Text: stockMessage(qualifying, l.cfg.TargetURL)}, log)
	l.mu.Lock()
	l.status.AlertsSent++
	l.mu.Unlock()
	return true
}

func (l *Loop) alert(text string, log *zap.Logger) {
	if !l.alertLimiter.AllowN(l.now(), 1) {
		log.Info("Failure alert suppressed by throttle")
		return
	}
	l.send(notifier.Message{Text: text}, log)
}

// Notify sends msg in the background like every loop notification.
func (l *Loop) Notify(msg notifier.Message) {
	l.send(msg, l.logger)
}

// send delivers msg in the background. Failures are logged, never retried.
func (l *Loop) send(msg notifier.Message, log *zap.Logger) {
	if l.deps.Notifier == nil {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.NotifyTimeout)
		defer cancel()
		if err := l.deps.Notifier.Notify(ctx, msg); err != nil {
			log.Warn("Failed to send notification", zap.String("channel", l.deps.Notifier.Name()), logger.ErrorField(err))
		}
	}()
}

// Wait blocks until pending notifications are delivered or time out.
func (l *Loop) Wait() {
	l.wg.Wait()
}

func (l *Loop) finish(r *Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	at := r.StartedAt
	l.status.Checks++
	l.status.LastCheck = &at
	l.status.LastOutcome = r.Outcome
	l.status.LastError = r.Error
	if r.Err == nil {
		l.status.LastEntries = r.Entries
	}
}

// Status returns a snapshot of the loop.
func (l *Loop) Status() Status {
	l.mu.RLock()
	s := l.status
	s.LastEntries = append([]stock.Entry(nil), l.status.LastEntries...)
	sched, jobID := l.sched, l.jobID
	l.mu.RUnlock()

	s.Running = l.running.Load()
	s.InProgress = l.inProgress.Load()
	if sched != nil {
		if job, err := sched.Get(jobID); err == nil && !job.NextRun.IsZero() {
			next := job.NextRun
			s.NextRun = &next
		}
	}
	return s
}

// Run checks immediately, then every Interval until ctx is cancelled.
// Triggers that fire while a check is running are skipped.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("loop already running")
	}
	defer l.running.Store(false)

	l.logger.Info("Starting stock watcher",
		zap.String("target", l.cfg.TargetURL),
		zap.Duration("interval", l.cfg.Interval),
		zap.Duration("alert_throttle", l.cfg.AlertThrottle))
	if l.cfg.StartupNotice {
		l.send(notifier.Message{Text: startupMessage(l.cfg.TargetURL, l.cfg.Interval)}, l.logger)
	}

	sched := scheduler.New(ctx, l.logger)
	jobID, err := sched.Add("stock_check", scheduler.Every(l.cfg.Interval), l.scheduledCheck)
	if err != nil {
		return fmt.Errorf("failed to schedule stock check: %w", err)
	}
	l.mu.Lock()
	l.sched, l.jobID = sched, jobID
	l.mu.Unlock()

	// Initial check before the first tick.
	_ = l.scheduledCheck(ctx)

	sched.Start()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Shutdown(shutdownCtx); err != nil {
		l.logger.Warn("Scheduler shutdown incomplete", logger.ErrorField(err))
	}
	l.mu.Lock()
	l.sched, l.jobID = nil, ""
	l.mu.Unlock()

	l.Wait()
	l.logger.Info("Stock watcher stopped")
	return nil
}

func (l *Loop) scheduledCheck(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	_, err := l.Check(ctx)
	if errors.Is(err, ErrCheckInProgress) {
		l.logger.Debug("Skipping scheduled check, previous one still running")
		return nil
	}
	return err
}
