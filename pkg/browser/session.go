package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// Session owns at most one browser and its single page. The handle is only
// replaced through Acquire and Release.
type Session struct {
	logger *zap.Logger

	mu  sync.Mutex
	tab *Tab
	cfg LaunchConfig
}

func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{logger: logger.Named("browser")}
}

// Acquire returns a connected tab. With cfg.Reuse a still-connected tab that
// was launched with an equivalent config is returned unchanged; otherwise the
// held browser is closed and a new one launched. Profile contention is
// reported as ErrProfileInUse.
func (s *Session) Acquire(ctx context.Context, cfg LaunchConfig) (*Tab, error) {
	cfg = cfg.withDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tab != nil {
		if cfg.Reuse && s.cfg.sameBrowser(cfg) && s.tab.Connected() {
			s.logger.Debug("Reusing browser")
			return s.tab, nil
		}
		s.closeLocked()
	}

	tab, err := launch(ctx, cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.tab = tab
	s.cfg = cfg
	return tab, nil
}

// Release closes the held browser. Safe to call when nothing is held.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// Held reports whether a connected browser is currently owned.
func (s *Session) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab != nil && s.tab.Connected()
}

func (s *Session) closeLocked() {
	if s.tab == nil {
		return
	}
	s.tab.close()
	s.tab = nil
	s.logger.Debug("Browser released")
}

func launch(ctx context.Context, cfg LaunchConfig, logger *zap.Logger) (*Tab, error) {
	if cfg.ProfileDir != "" {
		if err := os.MkdirAll(cfg.ProfileDir, 0700); err != nil {
			return nil, fmt.Errorf("create profile dir: %w", err)
		}
		CleanStaleLocks(cfg.ProfileDir, logger)
	}

	// The allocator outlives the caller's context; the tab is closed through
	// Release, not through cancellation of ctx.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), AllocatorOptions(cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	errc := make(chan error, 1)
	go func() { errc <- chromedp.Run(tabCtx) }()

	var err error
	select {
	case err = <-errc:
	case <-time.After(cfg.LaunchTimeout):
		err = fmt.Errorf("browser did not start within %s", cfg.LaunchTimeout)
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		cancel()
		if IsProfileInUse(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrProfileInUse, cfg.ProfileDir, err)
		}
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if cfg.Stealth {
		err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to install stealth script: %w", err)
		}
	}

	logger.Info("Browser launched",
		zap.Bool("headless", cfg.Headless),
		zap.Bool("stealth", cfg.Stealth),
		zap.String("profile_dir", cfg.ProfileDir))

	return &Tab{ctx: tabCtx, cancel: cancel, cfg: cfg, logger: logger}, nil
}

// TempProfileDir creates a disposable profile directory under the OS temp dir.
func TempProfileDir(prefix string) (string, error) {
	if prefix == "" {
		prefix = "deckwatch_profile"
	}
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("%s_%d", prefix, time.Now().UnixMilli()))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create temp profile: %w", err)
	}
	return dir, nil
}
