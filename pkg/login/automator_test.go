package login

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"deckwatch/pkg/browser"
	"deckwatch/pkg/credentials"
	"deckwatch/pkg/dom"
)

// fakeDriver scripts a login page. Account waits pop accountWaits in order
// and return false once it is exhausted.
type fakeDriver struct {
	mu sync.Mutex

	uiReady      bool
	triggerFound bool
	fields       map[string][]dom.Field // keyed by first selector of the group
	controls     []dom.Control
	clickErr     error
	formSubmits  bool
	globalSubmit string
	pressEnter   bool
	loginForm    *dom.LoginForm
	accountWaits []bool
	cookies      credentials.CookieSet

	typed     map[string]string
	clicked   []string
	submitted int
	entered   []string
	captured  []string
	accounts  int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		uiReady: true,
		fields: map[string][]dom.Field{
			"#input_username": {
				{Ref: "search", Type: "text", ID: "store_nav_search_term", Placeholder: "buscar productos"},
				{Ref: "user", Type: "text", Name: "username", Form: &dom.Form{HasSubmit: true}},
			},
			"#input_password": {
				{Ref: "pw", Type: "password", Name: "password", Form: &dom.Form{HasSubmit: true}},
			},
		},
		controls: []dom.Control{{Ref: "signin", Kind: dom.ControlSubmit, Text: "Iniciar sesión"}},
		cookies:  credentials.CookieSet{{Name: "steamLoginSecure", Value: "x", Domain: "store.steampowered.com", Path: "/"}},
		typed:    map[string]string{},
	}
}

func (f *fakeDriver) Navigate(context.Context, string) error { return nil }

func (f *fakeDriver) WaitAny(_ context.Context, selectors []string, _ time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selectors[0] == DefaultSelectors().Account[0] {
		f.accounts++
		if len(f.accountWaits) == 0 {
			return false
		}
		ok := f.accountWaits[0]
		f.accountWaits = f.accountWaits[1:]
		return ok
	}
	return f.uiReady
}

func (f *fakeDriver) ClickFirst(_ context.Context, selectors []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selectors[0] == DefaultSelectors().Triggers[0] {
		if f.triggerFound {
			f.uiReady = true
			return selectors[0], nil
		}
		return "", nil
	}
	if f.globalSubmit != "" {
		f.clicked = append(f.clicked, f.globalSubmit)
	}
	return f.globalSubmit, nil
}

func (f *fakeDriver) CollectFields(_ context.Context, selectors []string) ([]dom.Field, error) {
	return f.fields[selectors[0]], nil
}

func (f *fakeDriver) TypeInto(_ context.Context, ref, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typed[ref] = text
	return nil
}

func (f *fakeDriver) CollectControls(context.Context, string) ([]dom.Control, error) {
	return f.controls, nil
}

func (f *fakeDriver) ClickRef(_ context.Context, ref string) error {
	if f.clickErr != nil {
		return f.clickErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicked = append(f.clicked, ref)
	return nil
}

func (f *fakeDriver) SubmitForm(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.formSubmits {
		f.submitted++
	}
	return f.formSubmits, nil
}

func (f *fakeDriver) PressEnter(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.pressEnter {
		return errors.New("field not focusable")
	}
	f.entered = append(f.entered, ref)
	return nil
}

func (f *fakeDriver) FindLoginForm(context.Context) (dom.LoginForm, bool, error) {
	if f.loginForm == nil {
		return dom.LoginForm{}, false, nil
	}
	return *f.loginForm, true, nil
}

func (f *fakeDriver) Cookies(context.Context) (credentials.CookieSet, error) {
	return f.cookies, nil
}

func (f *fakeDriver) Capture(_ context.Context, dir, prefix string) (browser.Artifacts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captured = append(f.captured, prefix)
	return browser.Artifacts{Screenshot: dir + "/" + prefix + ".png", HTML: dir + "/" + prefix + ".html"}, nil
}

var testCreds = Credentials{Username: "deckfan", Password: "hunter2"}

func newTestAutomator(t *testing.T, opts Options) *Automator {
	t.Helper()
	opts.GraceDelay = time.Millisecond
	opts.DebugDir = t.TempDir()
	return NewAutomator(opts, nil, zaptest.NewLogger(t))
}

func TestAttemptSucceedsAfterSubmitClick(t *testing.T) {
	d := newFakeDriver()
	d.accountWaits = []bool{true}
	a := newTestAutomator(t, Options{})

	outcome, err := a.Attempt(context.Background(), d, testCreds)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)

	assert.Equal(t, map[string]string{"user": "deckfan", "pw": "hunter2"}, d.typed, "search box never receives input")
	assert.Equal(t, []string{"signin"}, d.clicked)
	assert.Equal(t, 1, d.accounts)
}

func TestAttemptWaitsForAccountAfterWeakSubmitSignal(t *testing.T) {
	d := newFakeDriver()
	d.accountWaits = []bool{false, true}
	a := newTestAutomator(t, Options{})

	outcome, err := a.Attempt(context.Background(), d, testCreds)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
	assert.Equal(t, 2, d.accounts)
}

func TestAttemptHeadlessTimeoutIsTerminal(t *testing.T) {
	d := newFakeDriver()
	prompted := false
	a := newTestAutomator(t, Options{Debug: true})
	a.SetPrompter(func(context.Context, string) { prompted = true })

	var got []browser.Artifacts
	a.SetArtifactHandler(func(_ context.Context, art browser.Artifacts) { got = append(got, art) })

	outcome, err := a.Attempt(context.Background(), d, testCreds)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, Failed, outcome)
	assert.False(t, prompted)
	assert.Equal(t, []string{"failed_login"}, d.captured)
	require.Len(t, got, 1)
}

func TestAttemptSubmitFallbacks(t *testing.T) {
	t.Run("programmatic submit when click fails", func(t *testing.T) {
		d := newFakeDriver()
		d.clickErr = errors.New("element detached")
		d.formSubmits = true
		d.accountWaits = []bool{true}

		outcome, err := newTestAutomator(t, Options{}).Attempt(context.Background(), d, testCreds)
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
		assert.Equal(t, 1, d.submitted)
	})

	t.Run("global selector when the form has no controls", func(t *testing.T) {
		d := newFakeDriver()
		d.controls = nil
		d.globalSubmit = "#login_btn_signin"
		d.accountWaits = []bool{true}

		outcome, err := newTestAutomator(t, Options{}).Attempt(context.Background(), d, testCreds)
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
		assert.Equal(t, []string{"#login_btn_signin"}, d.clicked)
	})

	t.Run("enter in the password field when the form will not submit", func(t *testing.T) {
		d := newFakeDriver()
		d.controls = nil
		d.pressEnter = true
		d.globalSubmit = "#login_btn_signin"
		d.accountWaits = []bool{true}

		outcome, err := newTestAutomator(t, Options{}).Attempt(context.Background(), d, testCreds)
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
		assert.Equal(t, []string{"pw"}, d.entered)
		assert.Empty(t, d.clicked, "global selectors are not needed")
	})

	t.Run("nothing clickable is absorbed", func(t *testing.T) {
		d := newFakeDriver()
		d.controls = nil
		d.accountWaits = []bool{true}

		outcome, err := newTestAutomator(t, Options{Debug: true}).Attempt(context.Background(), d, testCreds)
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
		assert.Equal(t, []string{"failed_submit"}, d.captured)
	})
}

func TestAttemptClicksTriggerWhenUIMissing(t *testing.T) {
	d := newFakeDriver()
	d.uiReady = false
	d.triggerFound = true
	d.accountWaits = []bool{true}

	outcome, err := newTestAutomator(t, Options{}).Attempt(context.Background(), d, testCreds)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
}

func TestAttemptWithoutFieldsStillAwaitsAccount(t *testing.T) {
	d := newFakeDriver()
	d.uiReady = false
	d.fields = nil
	d.controls = nil
	d.accountWaits = []bool{true}

	outcome, err := newTestAutomator(t, Options{}).Attempt(context.Background(), d, testCreds)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
	assert.Empty(t, d.typed)
}

func TestAttemptFillsSignInFormWhenScoringFindsNothing(t *testing.T) {
	d := newFakeDriver()
	// only candidates that score zero or below
	d.fields = map[string][]dom.Field{
		"#input_username": {{Ref: "search", Type: "text", ID: "store_nav_search_term", Placeholder: "buscar"}},
		"#input_password": {{Ref: "hidden", Type: "password", Name: "search_password"}},
	}
	d.loginForm = &dom.LoginForm{UserRef: "form-user", PassRef: "form-pw", InFrame: true}
	d.controls = []dom.Control{{Ref: "signin", Kind: dom.ControlButton, Text: "Iniciar sesión"}}
	d.accountWaits = []bool{true}

	outcome, err := newTestAutomator(t, Options{}).Attempt(context.Background(), d, testCreds)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
	assert.Equal(t, map[string]string{"form-user": "deckfan", "form-pw": "hunter2"}, d.typed)
	assert.Equal(t, []string{"signin"}, d.clicked, "submit uses the form's password input")
}

func TestAttemptFormFallbackOnlyFillsMissingField(t *testing.T) {
	d := newFakeDriver()
	d.fields["#input_password"] = nil
	d.loginForm = &dom.LoginForm{UserRef: "form-user", PassRef: "form-pw"}
	d.accountWaits = []bool{true}

	_, err := newTestAutomator(t, Options{}).Attempt(context.Background(), d, testCreds)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user": "deckfan", "form-pw": "hunter2"}, d.typed)
}

func TestAttemptManualSignalTimesOut(t *testing.T) {
	d := newFakeDriver()
	a := newTestAutomator(t, Options{Interactive: true, SignalTimeout: 50 * time.Millisecond, Debug: true})

	start := time.Now()
	outcome, err := a.Attempt(context.Background(), d, testCreds)
	assert.ErrorIs(t, err, ErrManualTimeout)
	assert.Equal(t, NeedsManualCompletion, outcome)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{"manual_timeout"}, d.captured)
	assert.False(t, a.Manual().Pending())
}

func TestAttemptInteractiveManualCompletion(t *testing.T) {
	d := newFakeDriver()
	d.accountWaits = []bool{false, false, true}
	a := newTestAutomator(t, Options{Interactive: true})

	prompted := make(chan struct{})
	a.SetPrompter(func(context.Context, string) { close(prompted) })

	go func() {
		<-prompted
		assert.Eventually(t, a.Manual().Pending, time.Second, time.Millisecond)
		a.Manual().Done()
	}()

	outcome, err := a.Attempt(context.Background(), d, testCreds)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
	assert.False(t, a.Manual().Pending())
}

func TestAttemptInteractiveCancelledWhileWaiting(t *testing.T) {
	d := newFakeDriver()
	a := newTestAutomator(t, Options{Interactive: true})

	ctx, cancel := context.WithCancel(context.Background())
	a.SetPrompter(func(context.Context, string) { cancel() })

	outcome, err := a.Attempt(ctx, d, testCreds)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, NeedsManualCompletion, outcome)
}

func TestAttemptInteractiveManualStillLoggedOut(t *testing.T) {
	d := newFakeDriver()
	a := newTestAutomator(t, Options{Interactive: true})
	a.SetPrompter(func(context.Context, string) {
		go func() {
			for !a.Manual().Done() {
				time.Sleep(time.Millisecond)
			}
		}()
	})

	outcome, err := a.Attempt(context.Background(), d, testCreds)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, Failed, outcome)
}

func TestWithInteractiveCopies(t *testing.T) {
	a := newTestAutomator(t, Options{})
	b := a.WithInteractive(true)
	assert.False(t, a.opts.Interactive)
	assert.True(t, b.opts.Interactive)
	assert.Same(t, a.Manual(), b.Manual())
}
