package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"deckwatch/pkg/credentials"
	"deckwatch/pkg/history"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session cookies and recent check outcomes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), root, cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, root *rootOptions, out io.Writer) error {
	cfg := root.cfg
	st, err := credentials.NewStore(cfg.Session.CookiesFile, root.log).Stat()
	if err != nil {
		return fmt.Errorf("failed to read cookie file: %w", err)
	}
	renderCookieStatus(out, st, time.Now())

	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path, 0, root.log)
	if err != nil {
		return fmt.Errorf("failed to open check history: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read check history: %w", err)
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Check history")
	t.AppendHeader(table.Row{"Outcome", "Checks"})
	var total int64
	for outcome, n := range stats {
		t.AppendRow(table.Row{outcome, n})
		total += n
	}
	t.SortBy([]table.SortBy{{Name: "Outcome", Mode: table.Asc}})
	t.AppendFooter(table.Row{"total", total})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func renderCookieStatus(out io.Writer, st credentials.FileStatus, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Session cookies")
	t.AppendRow(table.Row{"File", st.Path})
	if !st.Exists {
		t.AppendRow(table.Row{"Exists", "no"})
		t.SetStyle(table.StyleRounded)
		t.Render()
		return
	}
	t.AppendRows([]table.Row{
		{"Modified", st.ModTime.Format(time.RFC3339)},
		{"Age", now.Sub(st.ModTime).Round(time.Second).String()},
		{"Size", fmt.Sprintf("%d bytes", st.Size)},
		{"Cookies", st.Count},
		{"Authenticated", yesNo(st.Authenticated)},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
