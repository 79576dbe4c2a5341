package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"deckwatch/pkg/credentials"
	"deckwatch/pkg/dom"
)

// Tab is the single page of a launched browser. Every operation is bounded
// by a timeout and by the caller's context.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    LaunchConfig
	logger *zap.Logger
}

// Connected reports whether the browser behind the tab is still usable.
func (t *Tab) Connected() bool {
	if t == nil || t.ctx.Err() != nil {
		return false
	}
	c := chromedp.FromContext(t.ctx)
	return c != nil && c.Browser != nil && c.Target != nil
}

// Config returns the launch config the tab was started with.
func (t *Tab) Config() LaunchConfig {
	return t.cfg
}

func (t *Tab) close() {
	t.cancel()
}

// bound derives an operation context from the tab that also ends when ctx
// ends or timeout passes.
func (t *Tab) bound(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(t.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (t *Tab) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if !t.Connected() {
		return ErrNotConnected
	}
	opCtx, cancel := t.bound(ctx, timeout)
	defer cancel()

	err := chromedp.Run(opCtx, actions...)
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return err
}

func (t *Tab) eval(ctx context.Context, js string, out any) error {
	return t.run(ctx, t.cfg.ActionTimeout, chromedp.Evaluate(js, out))
}

// Navigate loads url and waits for the load event.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	t.logger.Debug("Navigating", zap.String("url", url))
	if err := t.run(ctx, t.cfg.NavTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// SetCookies installs the cookie set in the browser.
func (t *Tab) SetCookies(ctx context.Context, set credentials.CookieSet) error {
	if len(set) == 0 {
		return nil
	}
	params := ToCookieParams(set)
	return t.run(ctx, t.cfg.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
}

// Cookies returns every cookie the browser holds for the current page.
func (t *Tab) Cookies(ctx context.Context) (credentials.CookieSet, error) {
	var cookies []*network.Cookie
	err := t.run(ctx, t.cfg.ActionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return FromNetworkCookies(cookies), nil
}

// HTML returns the serialized document.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	var html string
	err := t.run(ctx, t.cfg.ActionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (t *Tab) Title(ctx context.Context) (string, error) {
	var title string
	err := t.run(ctx, t.cfg.ActionTimeout, chromedp.Title(&title))
	return title, err
}

func (t *Tab) Location(ctx context.Context) (string, error) {
	var loc string
	err := t.eval(ctx, script(jsLocation), &loc)
	return loc, err
}

// AnyPresent checks the main document and same-origin frames for any selector.
func (t *Tab) AnyPresent(ctx context.Context, selectors []string) (bool, error) {
	var found bool
	err := t.eval(ctx, script(jsAnyPresent, selectors), &found)
	return found, err
}

// WaitAny polls until any selector is present or timeout passes.
func (t *Tab) WaitAny(ctx context.Context, selectors []string, timeout time.Duration) bool {
	return NewWaitStrategy(timeout).WaitForAny(ctx, func(ctx context.Context) (bool, error) {
		return t.AnyPresent(ctx, selectors)
	})
}

// ClickFirst clicks the first visible element matching any selector and
// returns the selector used, or "" when nothing matched.
func (t *Tab) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	var sel string
	err := t.eval(ctx, script(jsClickFirst, selectors), &sel)
	return sel, err
}

// CollectFields snapshots every element matching selectors, tagging each with
// a ref for later TypeInto and CollectControls calls.
func (t *Tab) CollectFields(ctx context.Context, selectors []string) ([]dom.Field, error) {
	var fields []dom.Field
	err := t.eval(ctx, script(jsCollectFields, selectors), &fields)
	return fields, err
}

// TypeInto focuses the element, clears it and types text key by key.
func (t *Tab) TypeInto(ctx context.Context, ref, text string) error {
	var ok bool
	if err := t.eval(ctx, script(jsFocusClear, ref), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, ref)
	}

	for _, r := range text {
		if err := t.run(ctx, t.cfg.ActionTimeout, chromedp.KeyEvent(string(r))); err != nil {
			return fmt.Errorf("type into %s: %w", ref, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.cfg.KeyDelay):
		}
	}
	return nil
}

// PressEnter focuses the element and sends it an Enter key.
func (t *Tab) PressEnter(ctx context.Context, ref string) error {
	var ok bool
	if err := t.eval(ctx, script(jsFocus, ref), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, ref)
	}
	return t.run(ctx, t.cfg.ActionTimeout, chromedp.KeyEvent(kb.Enter))
}

// FindLoginForm returns the first form in the page or its same-origin frames
// that reads like a sign-in form and holds a text or password input.
func (t *Tab) FindLoginForm(ctx context.Context) (dom.LoginForm, bool, error) {
	var res struct {
		Found bool          `json:"found"`
		Form  dom.LoginForm `json:"form"`
	}
	if err := t.eval(ctx, script(jsFindLoginForm), &res); err != nil {
		return dom.LoginForm{}, false, err
	}
	return res.Form, res.Found, nil
}

// CollectControls lists clickable controls in the form enclosing fieldRef.
func (t *Tab) CollectControls(ctx context.Context, fieldRef string) ([]dom.Control, error) {
	var res struct {
		Found    bool          `json:"found"`
		Controls []dom.Control `json:"controls"`
	}
	if err := t.eval(ctx, script(jsCollectControls, fieldRef), &res); err != nil {
		return nil, err
	}
	if !res.Found {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, fieldRef)
	}
	return res.Controls, nil
}

// ClickRef clicks a previously collected element, falling back to a mouse
// click at its centre when a scripted click throws.
func (t *Tab) ClickRef(ctx context.Context, ref string) error {
	var res struct {
		Found   bool    `json:"found"`
		Clicked bool    `json:"clicked"`
		InFrame bool    `json:"inFrame"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
	}
	if err := t.eval(ctx, script(jsClickRef, ref), &res); err != nil {
		return err
	}
	switch {
	case !res.Found:
		return fmt.Errorf("%w: %s", ErrElementNotFound, ref)
	case res.Clicked:
		return nil
	case res.InFrame:
		return fmt.Errorf("click %s: element in frame rejected scripted click", ref)
	}
	return t.run(ctx, t.cfg.ActionTimeout, chromedp.MouseClickXY(res.X, res.Y))
}

// SubmitForm submits the form enclosing fieldRef programmatically.
func (t *Tab) SubmitForm(ctx context.Context, fieldRef string) (bool, error) {
	var ok bool
	err := t.eval(ctx, script(jsSubmitForm, fieldRef), &ok)
	return ok, err
}

// ToCookieParams converts stored cookies to CDP parameters.
func ToCookieParams(set credentials.CookieSet) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(set))
	for _, c := range set {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if c.Expires != nil {
			exp := cdp.TimeSinceEpoch(time.Unix(*c.Expires, 0))
			p.Expires = &exp
		}
		switch c.SameSite {
		case "Strict":
			p.SameSite = network.CookieSameSiteStrict
		case "Lax":
			p.SameSite = network.CookieSameSiteLax
		case "None":
			p.SameSite = network.CookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}

// FromNetworkCookies converts browser cookies to the stored form. CDP
// timestamps are fractional seconds and are floored.
func FromNetworkCookies(cookies []*network.Cookie) credentials.CookieSet {
	set := make(credentials.CookieSet, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		out := credentials.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		}
		if !c.Session {
			out.Expires = credentials.ExpiresFromFloat(c.Expires, true)
		}
		set = append(set, out)
	}
	return set.Normalize()
}
