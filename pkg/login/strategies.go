package login

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

// Strategy is one way of obtaining a fresh session.
type Strategy interface {
	Name() string
	Run(ctx context.Context) (credentials.CookieSet, error)
}

// Recovery is the result of a successful chain run.
type Recovery struct {
	Strategy string                `json:"strategy"`
	Cookies  credentials.CookieSet `json:"-"`
}

// Chain runs strategies strictly in order until one succeeds.
type Chain []Strategy

// Recover returns the first successful strategy's cookies, or every
// strategy's failure joined.
func (c Chain) Recover(ctx context.Context) (*Recovery, error) {
	if len(c) == 0 {
		return nil, errors.New("no recovery strategies configured")
	}
	var errs []error
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		cookies, err := s.Run(logger.WithStrategy(ctx, s.Name()))
		if err == nil {
			return &Recovery{Strategy: s.Name(), Cookies: cookies}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return nil, errors.Join(errs...)
}

// Names lists the strategies in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name()
	}
	return names
}

// Launcher hands out a driver for one attempt.
type Launcher interface {
	Acquire(ctx context.Context, cfg browser.LaunchConfig) (Driver, error)
	Release()
}

// FromSession adapts a browser session to the Launcher interface.
func FromSession(s *browser.Session) Launcher {
	return sessionLauncher{s}
}

type sessionLauncher struct{ s *browser.Session }

func (l sessionLauncher) Acquire(ctx context.Context, cfg browser.LaunchConfig) (Driver, error) {
	tab, err := l.s.Acquire(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (l sessionLauncher) Release() { l.s.Release() }

// CookieSink persists cookies read after an attempt.
type CookieSink interface {
	Save(set credentials.CookieSet) error
}

// StrategyConfig is shared by the built-in strategies.
type StrategyConfig struct {
	// Launch carries the exec path, user agent and timeouts.
	Launch      browser.LaunchConfig
	ProfileDir  string
	Headless    bool
	Credentials Credentials
	// TryHeadlessLogin enables the headless-stealth strategy.
	TryHeadlessLogin bool
	// Unattended means nobody can send the completion signal, so visible
	// attempts fail on the account timeout instead of asking the operator.
	Unattended bool
}

type attemptStrategy struct {
	name      string
	launch    browser.LaunchConfig
	creds     Credentials
	needCreds bool
	// tempProfile launches on a disposable profile; fallbackTemp does so only
	// after the configured profile turns out to be locked.
	tempProfile  bool
	fallbackTemp bool
	disabled     error

	launcher  Launcher
	automator *Automator
	sink      CookieSink
	logger    *zap.Logger
}

// NewProfileStrategy logs in with the configured profile directory, falling
// back to a disposable profile when it is locked by another browser.
func NewProfileStrategy(l Launcher, a *Automator, sink CookieSink, cfg StrategyConfig, log *zap.Logger) Strategy {
	launch := cfg.Launch
	launch.Headless = cfg.Headless
	launch.ProfileDir = cfg.ProfileDir
	launch.Reuse = false
	return newAttemptStrategy("profile", launch, cfg.Credentials, l, a.WithInteractive(!cfg.Headless && !cfg.Unattended), sink, log,
		func(s *attemptStrategy) { s.fallbackTemp = true })
}

// NewTemporaryProfileStrategy logs in on a visible browser with a fresh
// profile. It needs credentials.
func NewTemporaryProfileStrategy(l Launcher, a *Automator, sink CookieSink, cfg StrategyConfig, log *zap.Logger) Strategy {
	launch := cfg.Launch
	launch.Headless = false
	launch.Reuse = false
	return newAttemptStrategy("temporary-profile", launch, cfg.Credentials, l, a.WithInteractive(!cfg.Unattended), sink, log,
		func(s *attemptStrategy) {
			s.needCreds = true
			s.tempProfile = true
		})
}

// NewHeadlessStealthStrategy logs in headless with the stealth script
// injected. It needs credentials and TryHeadlessLogin.
func NewHeadlessStealthStrategy(l Launcher, a *Automator, sink CookieSink, cfg StrategyConfig, log *zap.Logger) Strategy {
	launch := cfg.Launch
	launch.Headless = true
	launch.Stealth = true
	launch.Reuse = false
	return newAttemptStrategy("headless-stealth", launch, cfg.Credentials, l, a.WithInteractive(false), sink, log,
		func(s *attemptStrategy) {
			s.needCreds = true
			s.tempProfile = true
			if !cfg.TryHeadlessLogin {
				s.disabled = errors.New("headless login disabled")
			}
		})
}

// DefaultChain is profile, then temporary-profile, then headless-stealth.
func DefaultChain(l Launcher, a *Automator, sink CookieSink, cfg StrategyConfig, log *zap.Logger) Chain {
	return Chain{
		NewProfileStrategy(l, a, sink, cfg, log),
		NewTemporaryProfileStrategy(l, a, sink, cfg, log),
		NewHeadlessStealthStrategy(l, a, sink, cfg, log),
	}
}

func newAttemptStrategy(name string, launch browser.LaunchConfig, creds Credentials, l Launcher, a *Automator,
	sink CookieSink, log *zap.Logger, opts ...func(*attemptStrategy)) *attemptStrategy {
	if log == nil {
		log = zap.NewNop()
	}
	s := &attemptStrategy{
		name:      name,
		launch:    launch,
		creds:     creds,
		launcher:  l,
		automator: a,
		sink:      sink,
		logger:    log.Named("recovery"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *attemptStrategy) Name() string { return s.name }

func (s *attemptStrategy) Run(ctx context.Context) (credentials.CookieSet, error) {
	log := logger.FromContext(ctx, s.logger)
	if s.disabled != nil {
		return nil, s.disabled
	}
	if s.needCreds && s.creds.Empty() {
		return nil, ErrNoCredentials
	}

	start := time.Now()
	launch := s.launch
	if s.tempProfile {
		dir, err := browser.TempProfileDir("deckwatch_profile")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)
		launch.ProfileDir = dir
	}

	d, err := s.launcher.Acquire(ctx, launch)
	if errors.Is(err, browser.ErrProfileInUse) && s.fallbackTemp {
		log.Warn("Profile in use, falling back to a temporary profile", zap.String("profile_dir", launch.ProfileDir))
		dir, derr := browser.TempProfileDir("deckwatch_profile")
		if derr != nil {
			return nil, derr
		}
		defer os.RemoveAll(dir)
		launch.ProfileDir = dir
		d, err = s.launcher.Acquire(ctx, launch)
	}
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer s.launcher.Release()

	log.Info("Login attempt started", zap.Bool("headless", launch.Headless), zap.Bool("stealth", launch.Stealth))
	outcome, attemptErr := s.automator.Attempt(ctx, d, s.creds)

	cookies, cookieErr := d.Cookies(ctx)
	if cookieErr != nil {
		log.Warn("Could not read cookies after attempt", zap.Error(cookieErr))
	} else if len(cookies) > 0 {
		if err := s.sink.Save(cookies); err != nil {
			log.Warn("Could not persist cookies after attempt", zap.Error(err))
		}
	}

	log.Info("Login attempt finished",
		zap.Stringer("outcome", outcome),
		logger.DurationField(time.Since(start)),
		zap.Bool("session_cookie", credentials.IsAuthenticated(cookies)))

	switch {
	case attemptErr != nil:
		return nil, attemptErr
	case outcome != Success:
		return nil, fmt.Errorf("%w: attempt ended as %s", ErrSessionExpired, outcome)
	case cookieErr != nil:
		return nil, fmt.Errorf("read cookies: %w", cookieErr)
	}
	return cookies, nil
}
