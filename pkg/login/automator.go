package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"deckwatch/pkg/browser"
	"deckwatch/pkg/credentials"
	"deckwatch/pkg/dom"
	"deckwatch/pkg/logger"
)

// DefaultLoginURL is the store sign-in page.
const DefaultLoginURL = "https://store.steampowered.com/login/"

// Driver is the slice of a browser tab a login attempt needs.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitAny(ctx context.Context, selectors []string, timeout time.Duration) bool
	ClickFirst(ctx context.Context, selectors []string) (string, error)
	CollectFields(ctx context.Context, selectors []string) ([]dom.Field, error)
	TypeInto(ctx context.Context, ref, text string) error
	CollectControls(ctx context.Context, fieldRef string) ([]dom.Control, error)
	ClickRef(ctx context.Context, ref string) error
	SubmitForm(ctx context.Context, fieldRef string) (bool, error)
	PressEnter(ctx context.Context, ref string) error
	FindLoginForm(ctx context.Context) (dom.LoginForm, bool, error)
	Cookies(ctx context.Context) (credentials.CookieSet, error)
	Capture(ctx context.Context, dir, prefix string) (browser.Artifacts, error)
}

// Credentials are the account username and password.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether either half is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// Outcome is the terminal state of a login attempt.
type Outcome int

const (
	Failed Outcome = iota
	Success
	// NeedsManualCompletion means the operator was asked to finish the login
	// but the signal never arrived.
	NeedsManualCompletion
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NeedsManualCompletion:
		return "needs_manual_completion"
	default:
		return "failed"
	}
}

// Selectors drive each step of an attempt.
type Selectors struct {
	LoginUI  []string
	Triggers []string
	Username []string
	Password []string
	Submit   []string
	Account  []string
}

func DefaultSelectors() Selectors {
	return Selectors{
		LoginUI: []string{
			`input[type="password"]`, `input[type="text"]`, `form[action*="login"]`,
			"#login_area", "#login_form", ".newlogindialog",
		},
		Triggers: []string{
			`a[href*="login"]`, `a[href*="/login/"]`, ".global_action_link", ".login_link", ".login",
			`button[data-ga="header_signin"]`,
		},
		Username: []string{
			"#input_username", `input[name="username"]`, "input#username", `input[name="accountname"]`, `input[type="text"]`,
		},
		Password: []string{
			"#input_password", `input[name="password"]`, "input#password", `input[type="password"]`,
		},
		Submit: []string{
			"#login_btn_signin", `button[type="submit"]`, "button#login_btn_signin", ".login_btn", ".auth_button",
			".btn_green_white_innerfade.btn_medium",
		},
		Account: []string{
			"#account_pulldown .name", "#account_pulldown", ".user_persona_name", ".persona_name",
			".account_name", ".user_name", ".global_actions .header_account_area .name",
		},
	}
}

// Prompter tells the operator something during an attempt.
type Prompter func(ctx context.Context, message string)

// ArtifactHandler receives debug artifacts captured after a failure.
type ArtifactHandler func(ctx context.Context, a browser.Artifacts)

type Options struct {
	LoginURL string
	// Interactive runs have a visible browser and fall back to waiting for
	// the operator; headless runs fail on the first account timeout.
	Interactive bool

	UITimeout      time.Duration
	TriggerTimeout time.Duration
	GraceDelay     time.Duration
	SubmitSettle   time.Duration
	AccountTimeout time.Duration
	// SignalTimeout bounds the wait for the completion signal. Zero waits
	// until ctx ends.
	SignalTimeout time.Duration
	// ManualTimeout is the wait for the account indicator once signalled.
	ManualTimeout time.Duration

	Debug    bool
	DebugDir string
}

func (o Options) withDefaults() Options {
	if o.LoginURL == "" {
		o.LoginURL = DefaultLoginURL
	}
	if o.UITimeout <= 0 {
		o.UITimeout = 30 * time.Second
	}
	if o.TriggerTimeout <= 0 {
		o.TriggerTimeout = 3 * time.Second
	}
	if o.GraceDelay <= 0 {
		o.GraceDelay = 1500 * time.Millisecond
	}
	if o.SubmitSettle <= 0 {
		o.SubmitSettle = 4 * time.Second
	}
	if o.AccountTimeout <= 0 {
		o.AccountTimeout = 60 * time.Second
	}
	if o.ManualTimeout <= 0 {
		o.ManualTimeout = 60 * time.Second
	}
	if o.DebugDir == "" {
		o.DebugDir = "debug"
	}
	return o
}

// Automator drives one login flow at a time. It is safe to share between
// strategies; WithInteractive returns a copy.
type Automator struct {
	opts      Options
	selectors Selectors
	manual    *ManualSignal
	prompt    Prompter
	artifacts ArtifactHandler
	logger    *zap.Logger
}

func NewAutomator(opts Options, manual *ManualSignal, l *zap.Logger) *Automator {
	if manual == nil {
		manual = NewManualSignal()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Automator{
		opts:      opts.withDefaults(),
		selectors: DefaultSelectors(),
		manual:    manual,
		prompt:    func(context.Context, string) {},
		artifacts: func(context.Context, browser.Artifacts) {},
		logger:    l.Named("login"),
	}
}

// SetPrompter installs the operator prompt used by interactive attempts.
func (a *Automator) SetPrompter(p Prompter) {
	if p != nil {
		a.prompt = p
	}
}

// SetArtifactHandler installs the receiver of debug artifacts.
func (a *Automator) SetArtifactHandler(h ArtifactHandler) {
	if h != nil {
		a.artifacts = h
	}
}

// WithInteractive returns a copy of a with the interactive mode set.
func (a *Automator) WithInteractive(interactive bool) *Automator {
	c := *a
	c.opts.Interactive = interactive
	return &c
}

// Manual exposes the completion signal.
func (a *Automator) Manual() *ManualSignal { return a.manual }

// Attempt signs in on d. Field and submit problems are logged and absorbed;
// the result is decided by whether the account indicator shows up.
func (a *Automator) Attempt(ctx context.Context, d Driver, creds Credentials) (Outcome, error) {
	log := logger.FromContext(ctx, a.logger)
	start := time.Now()

	if err := d.Navigate(ctx, a.opts.LoginURL); err != nil {
		return Failed, fmt.Errorf("open login page: %w", err)
	}

	if !a.waitForLoginUI(ctx, d, log) {
		log.Debug("Login UI not detected, continuing after grace delay")
		if err := browser.Sleep(ctx, a.opts.GraceDelay); err != nil {
			return Failed, err
		}
	}

	if creds.Empty() {
		log.Info("No credentials configured, waiting for an existing or manual session")
	} else if loggedIn := a.fillAndSubmit(ctx, d, creds, log); loggedIn {
		log.Info("Account indicator detected after submit", logger.DurationField(time.Since(start)))
		return Success, nil
	}

	if d.WaitAny(ctx, a.selectors.Account, a.opts.AccountTimeout) {
		log.Info("Login succeeded", logger.DurationField(time.Since(start)))
		return Success, nil
	}

	if !a.opts.Interactive {
		a.capture(ctx, d, "failed_login", log)
		return Failed, fmt.Errorf("%w: no account indicator after %s", ErrSessionExpired, a.opts.AccountTimeout)
	}

	log.Warn("Session not detected, waiting for manual completion")
	a.prompt(ctx, "No se detectó la sesión automáticamente. Completa el login en el navegador y envía la señal de finalización.")
	if err := a.waitForSignal(ctx); err != nil {
		if errors.Is(err, ErrManualTimeout) {
			log.Warn("Completion signal not received", zap.Duration("waited", a.opts.SignalTimeout))
			a.capture(ctx, d, "manual_timeout", log)
		}
		return NeedsManualCompletion, err
	}

	if d.WaitAny(ctx, a.selectors.Account, a.opts.ManualTimeout) {
		log.Info("Login completed manually", logger.DurationField(time.Since(start)))
		return Success, nil
	}
	return Failed, fmt.Errorf("%w: no account indicator after manual completion", ErrSessionExpired)
}

// waitForSignal waits for the operator, at most SignalTimeout. Running out
// of time is reported as ErrManualTimeout; cancellation of ctx is passed on.
func (a *Automator) waitForSignal(ctx context.Context) error {
	if a.opts.SignalTimeout <= 0 {
		return a.manual.Wait(ctx)
	}
	wctx, cancel := context.WithTimeout(ctx, a.opts.SignalTimeout)
	defer cancel()
	err := a.manual.Wait(wctx)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("%w after %s", ErrManualTimeout, a.opts.SignalTimeout)
	}
	return err
}

func (a *Automator) waitForLoginUI(ctx context.Context, d Driver, log *zap.Logger) bool {
	if d.WaitAny(ctx, a.selectors.LoginUI, a.opts.UITimeout) {
		return true
	}
	sel, err := d.ClickFirst(ctx, a.selectors.Triggers)
	if err != nil || sel == "" {
		log.Debug("No login trigger found", zap.Error(err))
		return false
	}
	log.Debug("Clicked login trigger", zap.String("selector", sel))
	return d.WaitAny(ctx, a.selectors.LoginUI, a.opts.TriggerTimeout)
}

// fillAndSubmit types both credentials and submits. It reports whether the
// account indicator appeared right after the submit click.
func (a *Automator) fillAndSubmit(ctx context.Context, d Driver, creds Credentials, log *zap.Logger) bool {
	user, err := a.typeBest(ctx, d, "username", a.selectors.Username, creds.Username, log)
	if err != nil {
		log.Warn("Username not typed", zap.Error(err))
	}
	pw, err := a.typeBest(ctx, d, "password", a.selectors.Password, creds.Password, log)
	if err != nil {
		log.Warn("Password not typed", zap.Error(err))
	}
	if user == nil || pw == nil {
		if ref := a.formFallback(ctx, d, creds, user == nil, pw == nil, log); ref != "" {
			pw = &dom.Field{Ref: ref}
		}
	}

	loggedIn, err := a.submit(ctx, d, pw, log)
	if err != nil {
		log.Warn("Submit failed", zap.Error(err))
		a.capture(ctx, d, "failed_submit", log)
	}
	return loggedIn
}

// formFallback types the credentials scoring could not place into the first
// text and password inputs of a sign-in looking form. It returns the ref of
// the password input it typed into, if any.
func (a *Automator) formFallback(ctx context.Context, d Driver, creds Credentials, needUser, needPass bool, log *zap.Logger) string {
	form, ok, err := d.FindLoginForm(ctx)
	if err != nil || !ok {
		log.Debug("No sign-in form for fallback typing", zap.Error(err))
		return ""
	}
	if needUser && form.UserRef != "" {
		if err := d.TypeInto(ctx, form.UserRef, creds.Username); err != nil {
			log.Debug("Fallback username not typed", zap.Error(err))
		} else {
			log.Debug("Typed username into sign-in form", zap.Bool("in_frame", form.InFrame))
		}
	}
	if needPass && form.PassRef != "" {
		if err := d.TypeInto(ctx, form.PassRef, creds.Password); err != nil {
			log.Debug("Fallback password not typed", zap.Error(err))
			return ""
		}
		log.Debug("Typed password into sign-in form", zap.Bool("in_frame", form.InFrame))
		return form.PassRef
	}
	return ""
}

func (a *Automator) typeBest(ctx context.Context, d Driver, kind string, selectors []string, value string, log *zap.Logger) (*dom.Field, error) {
	fields, err := d.CollectFields(ctx, selectors)
	if err != nil {
		return nil, fmt.Errorf("collect %s fields: %w", kind, err)
	}
	best, score, ok := SelectBest(fields)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%d candidates)", ErrLoginFieldNotFound, kind, len(fields))
	}
	if err := d.TypeInto(ctx, best.Ref, value); err != nil {
		return nil, fmt.Errorf("type %s: %w", kind, err)
	}
	log.Debug("Typed credential",
		zap.String("field", kind),
		zap.String("selector", best.Selector),
		zap.Int("score", score),
		zap.Bool("in_frame", best.InFrame))
	return &best, nil
}

// submit tries, in order: the best control in the password's form, a
// programmatic submit of that form, Enter in the password field, then global
// sign-in selectors.
func (a *Automator) submit(ctx context.Context, d Driver, pw *dom.Field, log *zap.Logger) (bool, error) {
	if pw != nil {
		controls, err := d.CollectControls(ctx, pw.Ref)
		if err != nil {
			log.Debug("No controls around password field", zap.Error(err))
		}
		if c, ok := ChooseSubmit(controls); ok {
			if err := d.ClickRef(ctx, c.Ref); err != nil {
				log.Debug("Submit click failed", zap.String("text", c.Text), zap.Error(err))
			} else {
				log.Debug("Clicked submit control", zap.String("kind", string(c.Kind)), zap.String("text", c.Text))
				if d.WaitAny(ctx, a.selectors.Account, a.opts.SubmitSettle) {
					return true, nil
				}
				return false, nil
			}
		}
		if ok, err := d.SubmitForm(ctx, pw.Ref); err == nil && ok {
			log.Debug("Submitted login form programmatically")
			return false, nil
		}
		if err := d.PressEnter(ctx, pw.Ref); err == nil {
			log.Debug("Pressed Enter in password field")
			return false, nil
		}
	}

	sel, err := d.ClickFirst(ctx, a.selectors.Submit)
	if err == nil && sel != "" {
		log.Debug("Clicked global submit", zap.String("selector", sel))
		return false, nil
	}
	return false, ErrSubmitFailed
}

func (a *Automator) capture(ctx context.Context, d Driver, prefix string, log *zap.Logger) {
	if !a.opts.Debug {
		return
	}
	art, err := d.Capture(ctx, a.opts.DebugDir, prefix)
	if err != nil {
		log.Warn("Could not capture debug artifacts", zap.Error(err))
		return
	}
	a.artifacts(ctx, art)
}
