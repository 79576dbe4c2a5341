package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deckwatch/pkg/login"
	"deckwatch/pkg/notifier"
)

func newRefreshCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-cookies",
		Short: "Run the login recovery chain once and save the new cookies.",
		Long: `Run the login recovery chain once and save the new cookies.

When a visible browser waits for you to finish the login by hand,
press Enter here once you are done.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd.Context(), root, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runRefresh(ctx context.Context, root *rootOptions, in io.Reader, out io.Writer) error {
	a := newApp(root.cfg, root.log)
	a.console = out
	defer a.close()

	go signalOnEnter(ctx, in, a.manual)

	root.log.Info("Refreshing session", zap.Strings("strategies", a.chain.Names()))
	rec, err := a.chain.Recover(ctx)
	if err != nil {
		a.notify(ctx, notifier.Message{Text: fmt.Sprintf("La renovación manual de cookies falló.\n%v", err)})
		return fmt.Errorf("session refresh failed: %w", err)
	}

	fmt.Fprintf(out, "Session renewed with %s, cookies saved to %s\n", rec.Strategy, a.cookies.Path())
	a.notify(ctx, notifier.Message{Text: fmt.Sprintf("Cookies renovadas (%s).", rec.Strategy)})
	return nil
}

// signalOnEnter delivers the manual completion signal for every line read
// from in. Lines arriving while nothing waits are ignored.
func signalOnEnter(ctx context.Context, in io.Reader, manual *login.ManualSignal) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		manual.Done()
	}
}
