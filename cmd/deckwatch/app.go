package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"deckwatch/pkg/browser"
	"deckwatch/pkg/config"
	"deckwatch/pkg/credentials"
	"deckwatch/pkg/login"
	"deckwatch/pkg/monitor"
	"deckwatch/pkg/notifier"
	"deckwatch/pkg/stock"
	"deckwatch/pkg/wechat"
)

const notifyTimeout = 30 * time.Second

// app holds the collaborators shared by every command.
type app struct {
	cfg *config.Config
	log *zap.Logger

	cookies   *credentials.Store
	session   *browser.Session
	manual    *login.ManualSignal
	notifier  *notifier.Multi
	automator *login.Automator
	// strategies configures chain; newLoop derives its own from it.
	strategies login.StrategyConfig
	chain      login.Chain
	extractor  *stock.Extractor

	// console echoes operator prompts when a command runs in a terminal.
	console io.Writer
}

func newApp(cfg *config.Config, log *zap.Logger) *app {
	a := &app{
		cfg:      cfg,
		log:      log,
		cookies:  credentials.NewStore(cfg.Session.CookiesFile, log),
		session:  browser.NewSession(log),
		manual:   login.NewManualSignal(),
		notifier: buildNotifier(cfg, log),
	}

	a.automator = login.NewAutomator(login.Options{
		LoginURL:       cfg.Login.URL,
		UITimeout:      cfg.Login.UITimeout(),
		AccountTimeout: cfg.Login.AccountTimeout(),
		SignalTimeout:  cfg.Login.ManualWait(),
		Debug:          cfg.Login.Debug,
		DebugDir:       cfg.Login.DebugDir,
	}, a.manual, log)
	a.automator.SetPrompter(func(ctx context.Context, message string) {
		if a.console != nil {
			fmt.Fprintln(a.console, message)
		}
		a.notify(ctx, notifier.Message{Text: message})
	})
	a.automator.SetArtifactHandler(func(ctx context.Context, art browser.Artifacts) {
		var files []string
		for _, p := range []string{art.Screenshot, art.HTML} {
			if p != "" {
				files = append(files, p)
			}
		}
		a.notify(ctx, notifier.Message{Text: "Artefactos de depuración del intento de login.", Attachments: files})
	})

	a.strategies = login.StrategyConfig{
		Launch:     loginLaunchConfig(cfg),
		ProfileDir: cfg.Browser.UserDataDir,
		Headless:   cfg.Login.Headless,
		Credentials: login.Credentials{
			Username: cfg.Login.Username,
			Password: cfg.Login.Password,
		},
		TryHeadlessLogin: cfg.Login.TryHeadlessLogin,
	}
	a.chain = a.newChain(a.strategies)

	a.extractor = stock.NewExtractor(stock.FromSession(a.session), a.cookies, stock.Options{
		TargetURL:    cfg.Target.URL,
		Launch:       launchConfig(cfg),
		Strict:       cfg.Target.Strict,
		ReadyTimeout: time.Duration(cfg.Target.ReadyTimeout) * time.Second,
	}, log)
	return a
}

func (a *app) newChain(cfg login.StrategyConfig) login.Chain {
	return login.DefaultChain(login.FromSession(a.session), a.automator, a.cookies, cfg, a.log)
}

// newLoop wires the watch loop. recorder may be nil. Without an operator
// channel (attended false) recovery never waits for a completion signal.
func (a *app) newLoop(recorder monitor.Recorder, attended bool) *monitor.Loop {
	chain := a.chain
	if !attended {
		cfg := a.strategies
		cfg.Unattended = true
		chain = a.newChain(cfg)
	}
	return monitor.New(monitor.Config{
		Interval:      a.cfg.Monitor.Interval(),
		AlertThrottle: a.cfg.Monitor.AlertThrottle(),
		NotifyTimeout: notifyTimeout,
		TargetURL:     a.cfg.Target.URL,
		StartupNotice: a.cfg.Monitor.StartupNotice,
	}, monitor.Deps{
		Extractor: a.extractor,
		Recovery:  chain,
		Browser:   a.session,
		Cookies:   a.cookies,
		Notifier:  a.notifier,
		Recorder:  recorder,
	}, a.log)
}

// notify delivers msg synchronously, bounded by notifyTimeout.
func (a *app) notify(ctx context.Context, msg notifier.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := a.notifier.Notify(ctx, msg); err != nil {
		a.log.Warn("Failed to send notification", zap.Error(err))
	}
}

// close releases the shared browser.
func (a *app) close() {
	a.session.Release()
}

func launchConfig(cfg *config.Config) browser.LaunchConfig {
	return browser.LaunchConfig{
		Headless:   cfg.Browser.Headless,
		Reuse:      cfg.Browser.Reuse,
		ProfileDir: cfg.Browser.UserDataDir,
		ExecPath:   cfg.Browser.ExecPath,
		UserAgent:  cfg.Browser.UserAgent,
		NavTimeout: time.Duration(cfg.Browser.NavTimeout) * time.Second,
	}
}

// loginLaunchConfig bounds the login page load by REFRESH_TIMEOUT_MS.
func loginLaunchConfig(cfg *config.Config) browser.LaunchConfig {
	launch := launchConfig(cfg)
	if t := cfg.Login.UITimeout(); t > 0 {
		launch.NavTimeout = t
	}
	return launch
}

// buildNotifier fans out to every enabled channel. With none enabled the
// result drops messages.
func buildNotifier(cfg *config.Config, log *zap.Logger) *notifier.Multi {
	var channels []notifier.Notifier
	if tg := cfg.Telegram; tg.Enabled {
		channels = append(channels, notifier.NewTelegramNotifier(&notifier.TelegramConfig{
			Enabled:  true,
			BotToken: tg.BotToken,
			ChatID:   tg.ChatID,
			Timeout:  tg.Timeout,
			APIBase:  tg.APIBase,
		}, log))
	}
	if wc := cfg.WeCom; wc.Enabled {
		client := wechat.NewClient(&wechat.Config{
			Enabled:      true,
			WebhookURL:   wc.WebhookURL,
			Timeout:      time.Duration(wc.Timeout) * time.Second,
			MentionUsers: wc.MentionUsers,
			Markdown:     wc.Markdown,
		}, log)
		channels = append(channels, notifier.NewWeComNotifier(client))
	}
	return notifier.NewMulti(log, channels...)
}
