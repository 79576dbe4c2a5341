// Package scheduler runs periodic jobs on robfig/cron. A tick that fires
// while the previous run of the same job is still going is dropped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job statuses
const (
	JobStatusScheduled = "scheduled"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

var ErrJobNotFound = errors.New("job not found")

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// Job is a snapshot of a scheduled job.
type Job struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Spec         string        `json:"spec"`
	Status       string        `json:"status"`
	Runs         int           `json:"runs"`
	NextRun      time.Time     `json:"next_run"`
	LastRun      time.Time     `json:"last_run"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
}

type entry struct {
	Job
	cronID cron.EntryID
	fn     JobFunc
}

// Scheduler owns a cron instance whose jobs run with the scheduler context.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	mu     sync.Mutex
	jobs   map[string]*entry
	logger *zap.Logger
}

// Every returns the cron spec for a fixed interval.
func Every(d time.Duration) string {
	return "@every " + d.String()
}

// New creates a scheduler. Jobs receive ctx.
func New(ctx context.Context, l *zap.Logger) *Scheduler {
	if l == nil {
		l = zap.NewNop()
	}
	l = l.Named("scheduler")
	cl := cronLogger{l.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:    ctx,
		jobs:   make(map[string]*entry),
		logger: l,
	}
}

// Add schedules fn under spec (standard cron or @every) and returns the job id.
func (s *Scheduler) Add(name, spec string, fn JobFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{
		Job: Job{ID: uuid.NewString(), Name: name, Spec: spec, Status: JobStatusScheduled},
		fn:  fn,
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(e) })
	if err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	e.cronID = id
	s.jobs[e.ID] = e

	s.logger.Info("Job scheduled",
		zap.String("job", name),
		zap.String("spec", spec),
		zap.Time("next_run", s.nextRun(e)))
	return e.ID, nil
}

// Start runs the cron loop until the scheduler context is cancelled.
func (s *Scheduler) Start() {
	s.cron.Start()
	<-s.ctx.Done()
}

// Shutdown stops new ticks and waits for running jobs or ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		s.logger.Warn("Jobs still running at shutdown")
		return ctx.Err()
	}
}

// Get returns a snapshot of one job.
func (s *Scheduler) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	job := e.Job
	job.NextRun = s.nextRun(e)
	return job, nil
}

func (s *Scheduler) run(e *entry) {
	start := time.Now()
	s.mu.Lock()
	e.Status = JobStatusRunning
	e.LastRun = start
	e.Runs++
	s.mu.Unlock()

	err := e.fn(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.LastDuration = time.Since(start)
	e.LastError = ""
	e.Status = JobStatusCompleted
	if err != nil {
		e.Status = JobStatusFailed
		e.LastError = err.Error()
		s.logger.Warn("Job failed", zap.String("job", e.Name), zap.Error(err))
	}
}

// nextRun is only meaningful once the cron loop has started; before that it
// is computed from the spec. Callers hold mu.
func (s *Scheduler) nextRun(e *entry) time.Time {
	if ce := s.cron.Entry(e.cronID); ce.Valid() && !ce.Next.IsZero() {
		return ce.Next
	}
	sched, err := cron.ParseStandard(e.Spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(time.Now())
}

// cronLogger sends cron's own logging to zap, info demoted to debug.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, kv ...any) {
	l.s.Debugw(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}
