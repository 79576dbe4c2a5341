package history

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"deckwatch/internal/models"
	"deckwatch/pkg/monitor"
	"deckwatch/pkg/stock"
)

func openTestStore(t *testing.T, retention int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"), retention, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func report(id string, at time.Duration, outcome monitor.Outcome) *monitor.Report {
	return &monitor.Report{
		ID:        id,
		StartedAt: base.Add(at),
		Duration:  1500 * time.Millisecond,
		Outcome:   outcome,
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()

	r := report("a", 0, monitor.OutcomeAvailable)
	r.Entries = []stock.Entry{{Title: "Steam Deck 512 GB OLED", Availability: stock.InStock}}
	r.Qualifying = 1
	r.Notified = true
	r.Recovered = "profile"
	require.NoError(t, s.RecordCheck(ctx, r))

	failed := report("b", time.Minute, monitor.OutcomeError)
	failed.Err = errors.New("navigation timeout")
	failed.Error = failed.Err.Error()
	failed.ExitCode = stock.ExitError
	require.NoError(t, s.RecordCheck(ctx, failed))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "b", runs[0].CheckID, "newest first")
	assert.True(t, runs[0].Failed())
	assert.Equal(t, "navigation timeout", runs[0].ErrorMsg)
	assert.Equal(t, stock.ExitError, runs[0].ExitCode)

	got := runs[1]
	assert.Equal(t, models.CheckOutcomeAvailable, got.Outcome)
	assert.Equal(t, int64(1500), got.Duration)
	assert.Equal(t, 1, got.EntryCount)
	assert.Equal(t, "profile", got.Recovered)
	assert.True(t, got.Notified)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(got.Entries, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "en stock", entries[0]["availability"])
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.RecordCheck(ctx, report(id, time.Duration(i)*time.Minute, monitor.OutcomeNoneInStock)))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].CheckID)

	runs, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRetentionPrunesOldest(t *testing.T) {
	s := openTestStore(t, 2)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.RecordCheck(ctx, report(id, time.Duration(i)*time.Minute, monitor.OutcomeNoItems)))
	}

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "d", runs[0].CheckID)
	assert.Equal(t, "c", runs[1].CheckID)
}

func TestStats(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.RecordCheck(ctx, report("a", 0, monitor.OutcomeNoneInStock)))
	require.NoError(t, s.RecordCheck(ctx, report("b", time.Minute, monitor.OutcomeNoneInStock)))
	require.NoError(t, s.RecordCheck(ctx, report("c", 2*time.Minute, monitor.OutcomeNotLoggedIn)))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[models.CheckOutcome]int64{
		models.CheckOutcomeNoneInStock: 2,
		models.CheckOutcomeNotLoggedIn: 1,
	}, stats)
}

func TestDuplicateCheckIDRejected(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.RecordCheck(ctx, report("a", 0, monitor.OutcomeNoItems)))
	assert.Error(t, s.RecordCheck(ctx, report("a", time.Minute, monitor.OutcomeNoItems)))
}

func TestNilStore(t *testing.T) {
	var s *Store
	assert.NoError(t, s.RecordCheck(context.Background(), report("a", 0, monitor.OutcomeNoItems)))
	_, err := s.Recent(context.Background(), 5)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, s.Close())
}
