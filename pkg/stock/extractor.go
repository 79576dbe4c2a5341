package stock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"deckwatch/pkg/browser"
	"deckwatch/pkg/credentials"
	"deckwatch/pkg/logger"
)

// Page is the slice of a browser tab the extractor drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	SetCookies(ctx context.Context, set credentials.CookieSet) error
	Cookies(ctx context.Context) (credentials.CookieSet, error)
	WaitAny(ctx context.Context, selectors []string, timeout time.Duration) bool
	HTML(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Location(ctx context.Context) (string, error)
}

// Browser hands out the shared page.
type Browser interface {
	Acquire(ctx context.Context, cfg browser.LaunchConfig) (Page, error)
	Release()
}

// CookieSource supplies stored cookies.
type CookieSource interface {
	Load() credentials.CookieSet
}

// FromSession adapts a browser session to the Browser interface.
func FromSession(s *browser.Session) Browser {
	return sessionBrowser{s}
}

type sessionBrowser struct{ s *browser.Session }

func (b sessionBrowser) Acquire(ctx context.Context, cfg browser.LaunchConfig) (Page, error) {
	tab, err := b.s.Acquire(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (b sessionBrowser) Release() { b.s.Release() }

// Options configure an Extractor.
type Options struct {
	TargetURL string
	Launch    browser.LaunchConfig
	// Strict fails the pass with ErrNotLoggedIn when no session is detected.
	Strict bool
	// ReadyTimeout bounds the non-fatal wait for offer containers.
	ReadyTimeout time.Duration
	Rules        Rules
}

// Extractor loads the listing page with the stored session and parses it.
type Extractor struct {
	browser Browser
	cookies CookieSource
	opts    Options
	logger  *zap.Logger
}

func NewExtractor(b Browser, cookies CookieSource, opts Options, l *zap.Logger) *Extractor {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 8 * time.Second
	}
	if opts.Rules.Containers == "" {
		opts.Rules = DefaultRules()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Extractor{browser: b, cookies: cookies, opts: opts, logger: l.Named("stock")}
}

// Extract runs one pass against the target page.
func (e *Extractor) Extract(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx, e.logger)

	launch := e.opts.Launch
	persistent := launch.ProfileDir != ""

	page, err := e.browser.Acquire(ctx, launch)
	if errors.Is(err, browser.ErrProfileInUse) {
		log.Warn("Profile in use, retrying with a temporary profile", zap.String("profile_dir", launch.ProfileDir))
		dir, derr := browser.TempProfileDir("deckwatch_extract")
		if derr != nil {
			return nil, derr
		}
		defer os.RemoveAll(dir)
		launch.ProfileDir = dir
		launch.Reuse = false
		persistent = false
		page, err = e.browser.Acquire(ctx, launch)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire browser: %w", err)
	}
	if !launch.Reuse {
		defer e.browser.Release()
	}

	// A persistent profile carries its own session; only throwaway profiles
	// get the stored cookies replayed.
	if !persistent {
		if err := e.applyCookies(ctx, page, log); err != nil {
			return nil, err
		}
	}

	if err := page.Navigate(ctx, e.opts.TargetURL); err != nil {
		return nil, err
	}

	if !page.WaitAny(ctx, e.opts.Rules.ReadySignals, e.opts.ReadyTimeout) {
		log.Debug("Offer containers did not appear, parsing anyway")
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	title, _ := page.Title(ctx)
	loc, _ := page.Location(ctx)
	if loc == "" {
		loc = e.opts.TargetURL
	}

	res := &Result{
		Entries:   Parse(html, title, loc, e.opts.Rules),
		PageTitle: title,
		URL:       loc,
	}

	account, hasAccount := DetectAccount(html, e.opts.Rules)
	pageCookies, err := page.Cookies(ctx)
	if err != nil {
		log.Debug("Could not read page cookies", zap.Error(err))
	}
	res.Account = account
	res.LoggedIn = hasAccount || credentials.IsAuthenticated(pageCookies)

	log.Info("Extraction finished",
		logger.CountField(len(res.Entries)),
		zap.Bool("logged_in", res.LoggedIn),
		zap.String("account", res.Account))

	if !res.LoggedIn && e.opts.Strict {
		return res, ErrNotLoggedIn
	}
	return res, nil
}

func (e *Extractor) applyCookies(ctx context.Context, page Page, log *zap.Logger) error {
	set := e.cookies.Load()
	if len(set) == 0 {
		log.Debug("No stored cookies to apply")
		return nil
	}
	if root := set.RootURL(); root != "" {
		if err := page.Navigate(ctx, root); err != nil {
			log.Warn("Failed to open cookie domain root", zap.String("url", root), zap.Error(err))
		}
	}
	if err := page.SetCookies(ctx, set); err != nil {
		return fmt.Errorf("apply cookies: %w", err)
	}
	log.Debug("Applied stored cookies",
		zap.Int("count", len(set)),
		zap.Bool("has_session_cookie", credentials.IsAuthenticated(set)))
	return nil
}
