package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deckwatch/pkg/stock"
)

func newDumpCmd(root *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Save the target page HTML and a screenshot for selector debugging.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = root.cfg.Login.DebugDir
			}
			return runDump(cmd.Context(), root, dir, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", "", "output directory (default is the debug dir)")
	return cmd
}

func runDump(ctx context.Context, root *rootOptions, dir string, out io.Writer) error {
	cfg := root.cfg
	a := newApp(cfg, root.log)
	defer a.close()

	tab, err := a.session.Acquire(ctx, launchConfig(cfg))
	if err != nil {
		return fmt.Errorf("acquire browser: %w", err)
	}

	if set := a.cookies.Load(); len(set) > 0 {
		if rootURL := set.RootURL(); rootURL != "" {
			if err := tab.Navigate(ctx, rootURL); err != nil {
				a.log.Warn("Failed to open cookie domain root", zap.String("url", rootURL), zap.Error(err))
			}
		}
		if err := tab.SetCookies(ctx, set); err != nil {
			return fmt.Errorf("apply cookies: %w", err)
		}
	}

	if err := tab.Navigate(ctx, cfg.Target.URL); err != nil {
		return err
	}
	rules := stock.DefaultRules()
	if !tab.WaitAny(ctx, rules.ReadySignals, time.Duration(cfg.Target.ReadyTimeout)*time.Second) {
		a.log.Info("Offer containers did not appear, dumping anyway")
	}

	art, err := tab.Capture(ctx, dir, "dump")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "HTML: %s\nScreenshot: %s\n", art.HTML, art.Screenshot)
	return nil
}
