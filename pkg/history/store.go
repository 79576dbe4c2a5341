package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"deckwatch/internal/models"
	"deckwatch/pkg/monitor"
)

// ErrDisabled is returned by a nil store.
var ErrDisabled = errors.New("check history disabled")

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// Store records check runs in sqlite. A nil *Store is valid and records
// nothing.
type Store struct {
	db        *gorm.DB
	retention int
	logger    *zap.Logger
}

// Open opens or creates the database at path. retention caps the number of
// kept runs; zero keeps everything.
func Open(path string, retention int, l *zap.Logger) (*Store, error) {
	if l == nil {
		l = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.AutoMigrate(&models.CheckRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	l.Named("history").Debug("History database ready", zap.String("path", path), zap.Int("retention", retention))
	return &Store{db: db, retention: retention, logger: l.Named("history")}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordCheck stores the summary of a finished check.
func (s *Store) RecordCheck(ctx context.Context, r *monitor.Report) error {
	if s == nil {
		return nil
	}
	entries, err := json.Marshal(r.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	run := models.CheckRun{
		CheckID:    r.ID,
		StartedAt:  r.StartedAt,
		Duration:   r.Duration.Milliseconds(),
		Outcome:    models.CheckOutcome(r.Outcome),
		EntryCount: len(r.Entries),
		Qualifying: r.Qualifying,
		LoggedIn:   r.LoggedIn,
		Account:    r.Account,
		Recovered:  r.Recovered,
		Notified:   r.Notified,
		ExitCode:   r.ExitCode,
		ErrorMsg:   r.Error,
		Entries:    datatypes.JSON(entries),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("failed to record check %s: %w", r.ID, err)
	}

	if s.retention > 0 {
		if n, err := s.Prune(ctx, s.retention); err != nil {
			s.logger.Warn("Failed to prune check history", zap.Error(err))
		} else if n > 0 {
			s.logger.Debug("Pruned check history", zap.Int64("deleted", n))
		}
	}
	return nil
}

// Recent returns the newest runs first. limit is clamped to [1, MaxLimit].
func (s *Store) Recent(ctx context.Context, limit int) ([]models.CheckRun, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	var runs []models.CheckRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query check history: %w", err)
	}
	return runs, nil
}

// Prune deletes everything but the newest keep runs.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if s == nil {
		return 0, ErrDisabled
	}
	newest := s.db.Model(&models.CheckRun{}).Select("id").Order("started_at DESC").Order("id DESC").Limit(keep)
	res := s.db.WithContext(ctx).Unscoped().Where("id NOT IN (?)", newest).Delete(&models.CheckRun{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune check history: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Stats counts runs by outcome.
func (s *Store) Stats(ctx context.Context) (map[models.CheckOutcome]int64, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	var rows []struct {
		Outcome models.CheckOutcome
		Total   int64
	}
	err := s.db.WithContext(ctx).Model(&models.CheckRun{}).
		Select("outcome, count(*) as total").Group("outcome").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count check history: %w", err)
	}
	out := make(map[models.CheckOutcome]int64, len(rows))
	for _, r := range rows {
		out[r.Outcome] = r.Total
	}
	return out, nil
}
