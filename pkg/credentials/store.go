package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store reads and writes the cookie file. Reads and writes are whole-file.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// FileStatus describes the cookie file on disk.
type FileStatus struct {
	Path          string    `json:"path"`
	Exists        bool      `json:"exists"`
	Size          int64     `json:"size"`
	ModTime       time.Time `json:"mod_time,omitempty"`
	Count         int       `json:"count"`
	Authenticated bool      `json:"authenticated"`
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger.Named("credentials")}
}

// Path returns the cookie file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored cookies. A missing or unparseable file yields an
// empty set, never an error.
func (s *Store) Load() CookieSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read cookie file", zap.String("path", s.path), zap.Error(err))
		}
		return CookieSet{}
	}

	var set CookieSet
	if err := json.Unmarshal(data, &set); err != nil {
		s.logger.Warn("Cookie file is not a valid cookie array", zap.String("path", s.path), zap.Error(err))
		return CookieSet{}
	}
	if set == nil {
		set = CookieSet{}
	}
	return set.Normalize()
}

// Save writes the set as a JSON array. Failures are logged and returned
// wrapped in ErrPersistence; callers in the loop only log them.
func (s *Store) Save(set CookieSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append(CookieSet{}, set...)
	data, err := json.MarshalIndent(out.Normalize(), "", "  ")
	if err != nil {
		return s.fail(fmt.Errorf("%w: encode cookies: %v", ErrPersistence, err))
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return s.fail(fmt.Errorf("%w: create cookie dir: %v", ErrPersistence, err))
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return s.fail(fmt.Errorf("%w: write cookies: %v", ErrPersistence, err))
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return s.fail(fmt.Errorf("%w: replace cookie file: %v", ErrPersistence, err))
	}

	s.logger.Info("Cookies saved", zap.String("path", s.path), zap.Int("count", len(set)))
	return nil
}

func (s *Store) fail(err error) error {
	s.logger.Error("Failed to save cookies", zap.String("path", s.path), zap.Error(err))
	return err
}

// IsAuthenticated reports whether set contains a login session cookie.
func (s *Store) IsAuthenticated(set CookieSet) bool {
	return IsAuthenticated(set)
}

// Stat reports the cookie file's size, age and whether it holds a session.
func (s *Store) Stat() (FileStatus, error) {
	st := FileStatus{Path: s.path}
	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}

	set := s.Load()
	st.Exists = true
	st.Size = info.Size()
	st.ModTime = info.ModTime()
	st.Count = len(set)
	st.Authenticated = IsAuthenticated(set)
	return st, nil
}
