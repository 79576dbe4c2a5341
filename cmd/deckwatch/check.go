package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deckwatch/pkg/stock"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var alwaysZero bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single stock check and exit with its status.",
		Long: `Run a single stock check and print the offers found.

Exit status: 0 possibly in stock, 1 none in stock, 2 no items,
3 error, 4 not logged in. --exit-zero-always maps every run
without an error to 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("exit-zero-always") {
				root.cfg.Monitor.ExitZeroAlways = alwaysZero
			}
			code := runCheck(cmd.Context(), root, cmd.OutOrStdout())
			if code != 0 {
				return exitCodeError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&alwaysZero, "exit-zero-always", false, "exit 0 for every run without an error")
	return cmd
}

func runCheck(ctx context.Context, root *rootOptions, out io.Writer) int {
	a := newApp(root.cfg, root.log)
	defer a.close()

	start := time.Now()
	res, err := a.extractor.Extract(ctx)
	var entries []stock.Entry
	if res != nil {
		entries = res.Entries
		renderEntries(out, res)
	}
	code := stock.ExitCode(entries, err, root.cfg.Monitor.ExitZeroAlways)

	fields := []zap.Field{
		zap.Duration("duration", time.Since(start)),
		zap.Int("entries", len(entries)),
		zap.Int("qualifying", len(stock.Qualifying(entries))),
		zap.Int("exit_code", code),
	}
	if err != nil {
		root.log.Error("Check failed", append(fields, zap.Error(err))...)
		fmt.Fprintln(os.Stderr, "Error:", err)
		return code
	}
	root.log.Info("Check finished", fields...)
	return code
}

func renderEntries(out io.Writer, res *stock.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(res.URL)
	t.AppendHeader(table.Row{"#", "Title", "Price", "Availability"})
	for i, e := range res.Entries {
		t.AppendRow(table.Row{i + 1, e.Title, e.PriceText(), e.Availability})
	}
	session := "no"
	if res.LoggedIn {
		session = "yes"
		if res.Account != "" {
			session = res.Account
		}
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d offers", len(res.Entries)), "session", session})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
