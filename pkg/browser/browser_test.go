package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"deckwatch/pkg/credentials"
)

func TestIsProfileInUse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", fmt.Errorf("launch: %w", ErrProfileInUse), true},
		{"process singleton", errors.New("chrome failed to start:\n[1:1:ERROR:process_singleton_posix.cc] Failed to create ProcessSingleton"), true},
		{"lock file", errors.New("Failed to create /tmp/p/SingletonLock: File exists"), true},
		{"existing session", errors.New("chrome failed to start:\nOpening in existing browser session."), true},
		{"unrelated", errors.New("exec: \"google-chrome\": executable file not found in $PATH"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProfileInUse(tt.err))
		})
	}
}

func TestCleanStaleLocksRemovesDeadOwner(t *testing.T) {
	dir := t.TempDir()
	host, err := os.Hostname()
	require.NoError(t, err)

	// pid 0x7ffffffe is never a live process
	require.NoError(t, os.Symlink(host+"-2147483646", filepath.Join(dir, "SingletonLock")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SingletonCookie"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Preferences"), []byte("{}"), 0600))

	removed := CleanStaleLocks(dir, zaptest.NewLogger(t))
	assert.Len(t, removed, 2)

	_, err = os.Lstat(filepath.Join(dir, "SingletonLock"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "Preferences"))
	assert.NoError(t, err, "non-lock files are untouched")
}

func TestCleanStaleLocksKeepsLiveOwner(t *testing.T) {
	dir := t.TempDir()
	host, err := os.Hostname()
	require.NoError(t, err)

	target := fmt.Sprintf("%s-%d", host, os.Getpid())
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "SingletonLock")))

	removed := CleanStaleLocks(dir, zaptest.NewLogger(t))
	assert.Empty(t, removed)
	_, err = os.Lstat(filepath.Join(dir, "SingletonLock"))
	assert.NoError(t, err)
}

func TestCleanStaleLocksForeignHost(t *testing.T) {
	dir := t.TempDir()
	target := fmt.Sprintf("some-other-host-%d", os.Getpid())
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "SingletonLock")))

	removed := CleanStaleLocks(dir, nil)
	assert.Len(t, removed, 1)
}

func TestCleanStaleLocksEmptyDir(t *testing.T) {
	assert.Nil(t, CleanStaleLocks("", nil))
	assert.Empty(t, CleanStaleLocks(t.TempDir(), nil))
}

func TestAllocatorOptionsCount(t *testing.T) {
	base := AllocatorOptions(LaunchConfig{Headless: true})
	withProfile := AllocatorOptions(LaunchConfig{Headless: true, ProfileDir: "/tmp/profile"})
	assert.Len(t, withProfile, len(base)+1)
}

func TestLaunchConfigSameBrowser(t *testing.T) {
	a := LaunchConfig{Headless: true, ProfileDir: "/p"}
	assert.True(t, a.sameBrowser(LaunchConfig{Headless: true, ProfileDir: "/p", Reuse: true}))
	assert.False(t, a.sameBrowser(LaunchConfig{Headless: false, ProfileDir: "/p"}))
	assert.False(t, a.sameBrowser(LaunchConfig{Headless: true, ProfileDir: "/q"}))
	assert.False(t, a.sameBrowser(LaunchConfig{Headless: true, ProfileDir: "/p", Stealth: true}))
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := NewSession(zaptest.NewLogger(t))
	s.Release()
	s.Release()
	assert.False(t, s.Held())
}

func TestWaitForAny(t *testing.T) {
	ws := &WaitStrategy{Timeout: time.Second, Interval: 5 * time.Millisecond}

	calls := 0
	ok := ws.WaitForAny(context.Background(), func(context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return false, errors.New("mid navigation")
		}
		return true, nil
	})
	assert.True(t, ok)
	assert.Equal(t, 3, calls)

	short := &WaitStrategy{Timeout: 20 * time.Millisecond, Interval: 5 * time.Millisecond}
	assert.False(t, short.WaitForAny(context.Background(), func(context.Context) (bool, error) {
		return false, nil
	}))
}

func TestCookieConversion(t *testing.T) {
	exp := int64(1767225600)
	set := credentials.CookieSet{
		{Name: "steamLoginSecure", Value: "v", Domain: ".steampowered.com", Expires: &exp, SameSite: "None", Secure: true},
		{Name: "sessionid", Value: "s", Domain: "store.steampowered.com"},
	}
	params := ToCookieParams(set)
	require.Len(t, params, 2)
	require.NotNil(t, params[0].Expires)
	assert.Equal(t, exp, params[0].Expires.Time().Unix())
	assert.Equal(t, network.CookieSameSiteNone, params[0].SameSite)
	assert.Equal(t, "/", params[1].Path)
	assert.Nil(t, params[1].Expires)

	back := FromNetworkCookies([]*network.Cookie{
		{Name: "a", Domain: "store.steampowered.com", Path: "/", Expires: 1767225600.9, SameSite: network.CookieSameSiteLax},
		{Name: "b", Domain: "store.steampowered.com", Expires: -1, Session: true},
		nil,
	})
	require.Len(t, back, 2)
	assert.Equal(t, exp, *back[0].Expires)
	assert.Equal(t, "Lax", back[0].SameSite)
	assert.Nil(t, back[1].Expires)
	assert.Equal(t, "/", back[1].Path)
}

func TestScriptEmbedsArguments(t *testing.T) {
	js := script(jsAnyPresent, []string{`input[type="password"]`})
	assert.True(t, strings.HasPrefix(js, "(function(){"))
	assert.Contains(t, js, `["input[type=\"password\"]"]`)
	assert.Contains(t, js, refAttr)
}

func TestCollectControlsQueriesInDocumentOrder(t *testing.T) {
	js := script(jsCollectControls, "r1")
	assert.Equal(t, 1, strings.Count(js, "querySelectorAll('"+submitControls+"')"),
		"submit inputs and plain buttons come from one query")
	assert.NotContains(t, js, `forEach(el => push(el, 'submit'))`)
	assert.Contains(t, js, `"r1"`)
}

func TestFindLoginFormScript(t *testing.T) {
	js := script(jsFindLoginForm)
	assert.Contains(t, js, `/iniciar sesión|sign in/i`)
	assert.Contains(t, js, `input[type="text"], input:not([type])`)
	assert.NotContains(t, js, "%!", "no formatting verbs left unfilled")
}
