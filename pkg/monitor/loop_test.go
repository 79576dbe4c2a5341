package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"deckwatch/pkg/credentials"
	"deckwatch/pkg/login"
	"deckwatch/pkg/notifier"
	"deckwatch/pkg/stock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type step struct {
	res *stock.Result
	err error
}

// scriptedExtractor replays steps and repeats the last one once exhausted.
type scriptedExtractor struct {
	mu    sync.Mutex
	steps []step
	calls int
	gate  chan struct{}
}

func (s *scriptedExtractor) Extract(ctx context.Context) (*stock.Result, error) {
	s.mu.Lock()
	s.calls++
	st := s.steps[0]
	if len(s.steps) > 1 {
		s.steps = s.steps[1:]
	}
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return st.res, st.err
}

func (s *scriptedExtractor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeRecoverer struct {
	rec   *login.Recovery
	err   error
	calls int
}

func (f *fakeRecoverer) Recover(context.Context) (*login.Recovery, error) {
	f.calls++
	return f.rec, f.err
}

type countingReleaser struct{ n int }

func (c *countingReleaser) Release() { c.n++ }

type savedCookies struct{ sets []credentials.CookieSet }

func (s *savedCookies) Save(set credentials.CookieSet) error {
	s.sets = append(s.sets, set)
	return nil
}

type inbox struct {
	mu   sync.Mutex
	msgs []string
}

func (i *inbox) notifier() notifier.Notifier {
	return notifier.Func(func(_ context.Context, msg notifier.Message) error {
		i.mu.Lock()
		defer i.mu.Unlock()
		i.msgs = append(i.msgs, msg.Text)
		return nil
	})
}

func (i *inbox) Messages() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.msgs...)
}

type memoryRecorder struct {
	mu      sync.Mutex
	reports []*Report
}

func (m *memoryRecorder) RecordCheck(_ context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func ptr(s string) *string { return &s }

var (
	available = &stock.Result{
		LoggedIn: true,
		Account:  "deckfan",
		Entries: []stock.Entry{
			{Title: "Steam Deck 256 GB LCD", Price: ptr("299,00€"), Availability: stock.OutOfStock},
			{Title: "Steam Deck 512 GB OLED", Price: ptr("459,00€"), Availability: stock.InStock},
		},
	}
	soldOut = &stock.Result{
		LoggedIn: true,
		Entries:  []stock.Entry{{Title: "Steam Deck 256 GB LCD", Availability: stock.OutOfStock}},
	}
	session = credentials.CookieSet{{Name: "steamLoginSecure", Value: "fresh", Domain: ".steampowered.com", Path: "/"}}
)

func newTestLoop(t *testing.T, cfg Config, deps Deps) (*Loop, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := New(cfg, deps, zaptest.NewLogger(t))
	l.SetClock(c.Now)
	return l, c
}

func TestStockAlertsAreThrottled(t *testing.T) {
	box := &inbox{}
	ex := &scriptedExtractor{steps: []step{{res: available}}}
	l, c := newTestLoop(t, Config{AlertThrottle: 30 * time.Minute, TargetURL: "https://store.example/deck"},
		Deps{Extractor: ex, Notifier: box.notifier()})

	for _, gap := range []time.Duration{0, 10 * time.Minute, 25 * time.Minute} {
		c.Advance(gap)
		r, err := l.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeAvailable, r.Outcome)
		assert.Equal(t, 1, r.Qualifying)
	}
	l.Wait()

	msgs := box.Messages()
	require.Len(t, msgs, 2, "the check ten minutes after the first alert is suppressed")
	assert.Contains(t, msgs[0], "1 artículo(s) posiblemente en stock")
	assert.Contains(t, msgs[0], "Steam Deck 512 GB OLED")
	assert.NotContains(t, msgs[0], "256 GB LCD")

	st := l.Status()
	assert.Equal(t, 3, st.Checks)
	assert.Equal(t, 2, st.AlertsSent)
	assert.Equal(t, 1, st.AlertsThrottled)
}

func TestNoAlertWhenEverythingSoldOut(t *testing.T) {
	box := &inbox{}
	l, _ := newTestLoop(t, Config{}, Deps{Extractor: &scriptedExtractor{steps: []step{{res: soldOut}}}, Notifier: box.notifier()})

	r, err := l.Check(context.Background())
	require.NoError(t, err)
	l.Wait()
	assert.Equal(t, OutcomeNoneInStock, r.Outcome)
	assert.Equal(t, stock.ExitNoneInStock, r.ExitCode)
	assert.False(t, r.Notified)
	assert.Empty(t, box.Messages())
}

func TestConcurrentCheckIsRejected(t *testing.T) {
	ex := &scriptedExtractor{steps: []step{{res: soldOut}}, gate: make(chan struct{})}
	l, _ := newTestLoop(t, Config{}, Deps{Extractor: ex})

	done := make(chan error, 1)
	go func() {
		_, err := l.Check(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return ex.Calls() == 1 }, time.Second, time.Millisecond)
	assert.True(t, l.Status().InProgress)

	r, err := l.Check(context.Background())
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrCheckInProgress)

	_, err = l.RefreshSession(context.Background())
	assert.ErrorIs(t, err, ErrCheckInProgress)

	close(ex.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, ex.Calls())
	assert.False(t, l.Status().InProgress)
}

func TestExpiredSessionIsRecoveredAndRetried(t *testing.T) {
	box := &inbox{}
	ex := &scriptedExtractor{steps: []step{{err: stock.ErrNotLoggedIn}, {res: available}}}
	rec := &fakeRecoverer{rec: &login.Recovery{Strategy: "temporary-profile", Cookies: session}}
	rel := &countingReleaser{}
	saved := &savedCookies{}
	hist := &memoryRecorder{}

	l, _ := newTestLoop(t, Config{}, Deps{
		Extractor: ex, Recovery: rec, Browser: rel, Cookies: saved, Notifier: box.notifier(), Recorder: hist,
	})

	r, err := l.Check(context.Background())
	require.NoError(t, err)
	l.Wait()

	assert.Equal(t, 2, ex.Calls())
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 1, rel.n, "the shared browser is released before recovery")
	assert.Equal(t, []credentials.CookieSet{session}, saved.sets)
	assert.Equal(t, "temporary-profile", r.Recovered)
	assert.Equal(t, OutcomeAvailable, r.Outcome)

	msgs := box.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, containsAny(msgs, "Sesión renovada automáticamente (temporary-profile)"))
	assert.True(t, containsAny(msgs, "Stock detectado"))

	require.Len(t, hist.reports, 1)
	assert.Equal(t, r.ID, hist.reports[0].ID)
	assert.Equal(t, 1, l.Status().Recoveries)
}

func TestRecoveryExhaustedAlertsOnce(t *testing.T) {
	box := &inbox{}
	ex := &scriptedExtractor{steps: []step{{err: stock.ErrNotLoggedIn}}}
	rec := &fakeRecoverer{err: errors.Join(login.ErrSessionExpired, login.ErrNoCredentials)}
	l, c := newTestLoop(t, Config{AlertThrottle: 30 * time.Minute}, Deps{Extractor: ex, Recovery: rec, Notifier: box.notifier()})

	r, err := l.Check(context.Background())
	assert.ErrorIs(t, err, ErrRecoveryExhausted)
	assert.ErrorIs(t, err, stock.ErrNotLoggedIn)
	assert.ErrorIs(t, err, login.ErrNoCredentials)
	assert.Equal(t, OutcomeNotLoggedIn, r.Outcome)
	assert.Equal(t, stock.ExitNotLoggedIn, r.ExitCode)
	assert.Equal(t, 1, ex.Calls(), "no retry without a renewed session")

	c.Advance(5 * time.Minute)
	_, err = l.Check(context.Background())
	assert.Error(t, err)
	l.Wait()

	msgs := box.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "La recuperación automática de la sesión falló")
	assert.Equal(t, 2, l.Status().Failures)
	assert.Equal(t, OutcomeNotLoggedIn, l.Status().LastOutcome)
}

func TestRetryFailureAfterRenewal(t *testing.T) {
	box := &inbox{}
	boom := errors.New("navigation timeout")
	ex := &scriptedExtractor{steps: []step{{err: boom}}}
	rec := &fakeRecoverer{rec: &login.Recovery{Strategy: "profile"}}
	l, _ := newTestLoop(t, Config{}, Deps{Extractor: ex, Recovery: rec, Notifier: box.notifier()})

	r, err := l.Check(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, OutcomeError, r.Outcome)
	assert.Equal(t, stock.ExitError, r.ExitCode)
	assert.Equal(t, 2, ex.Calls())
	l.Wait()
	assert.True(t, containsAny(box.Messages(), "tras renovar la sesión"))
}

func TestCancelledCheckSkipsRecovery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &fakeRecoverer{}
	l, _ := newTestLoop(t, Config{}, Deps{Extractor: &scriptedExtractor{steps: []step{{err: context.Canceled}}}, Recovery: rec})

	_, err := l.Check(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rec.calls)
}

func TestRefreshSession(t *testing.T) {
	rec := &fakeRecoverer{rec: &login.Recovery{Strategy: "profile", Cookies: session}}
	saved := &savedCookies{}
	box := &inbox{}
	l, _ := newTestLoop(t, Config{}, Deps{Extractor: &scriptedExtractor{}, Recovery: rec, Cookies: saved, Notifier: box.notifier()})

	got, err := l.RefreshSession(context.Background())
	require.NoError(t, err)
	l.Wait()
	assert.Equal(t, "profile", got.Strategy)
	assert.Len(t, saved.sets, 1)
	assert.Len(t, box.Messages(), 1)

	_, err = New(Config{}, Deps{}, nil).RefreshSession(context.Background())
	assert.ErrorIs(t, err, ErrRecoveryExhausted)
}

func TestRunChecksImmediatelyAndStops(t *testing.T) {
	box := &inbox{}
	ex := &scriptedExtractor{steps: []step{{res: soldOut}}}
	l := New(Config{Interval: time.Hour, StartupNotice: true, TargetURL: "https://store.example/deck"},
		Deps{Extractor: ex, Notifier: box.notifier()}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return ex.Calls() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return l.Status().NextRun != nil }, time.Second, time.Millisecond)

	st := l.Status()
	assert.True(t, st.Running)
	assert.Equal(t, time.Hour, st.Interval)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *st.NextRun, time.Minute)
	assert.Error(t, l.Run(ctx), "a second Run is refused")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.False(t, l.Status().Running)
	assert.Nil(t, l.Status().NextRun)
	assert.True(t, containsAny(box.Messages(), "Iniciando vigilancia de stock cada 1h0m0s"))
}

func containsAny(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}
