package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deckwatch/pkg/handlers"
	"deckwatch/pkg/history"
	"deckwatch/pkg/monitor"
	"deckwatch/pkg/server"
)

const shutdownTimeout = 10 * time.Second

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Check the store periodically and notify when stock appears.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), root)
		},
	}
}

func runWatch(ctx context.Context, root *rootOptions) error {
	cfg, log := root.cfg, root.log
	a := newApp(cfg, log)
	defer a.close()

	var (
		store    *history.Store
		recorder monitor.Recorder
		reader   handlers.HistoryReader
	)
	if cfg.History.Enabled {
		var err error
		store, err = history.Open(cfg.History.Path, cfg.History.Retention, log)
		if err != nil {
			return fmt.Errorf("failed to open check history: %w", err)
		}
		defer store.Close()
		recorder, reader = store, store
	}

	// The completion signal can only arrive over the control API.
	loop := a.newLoop(recorder, cfg.Server.Enabled)
	log.Info("Watcher configured",
		zap.Strings("strategies", a.chain.Names()),
		zap.Int("channels", a.notifier.Len()),
		zap.Bool("history", store != nil),
		zap.Bool("server", cfg.Server.Enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})

	if cfg.Server.Enabled {
		srv := server.NewHTTPServer(gctx, &server.Config{
			Address:      cfg.Server.Address,
			Port:         cfg.Server.Port,
			AllowOrigins: cfg.Server.AllowOrigins,
			Production:   cfg.App.IsProduction(),
		}, handlers.Deps{
			Monitor: loop,
			Manual:  a.manual,
			Cookies: a.cookies,
			History: reader,
		}, log)

		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	loop.Wait()
	if err != nil {
		return err
	}
	log.Info("Watcher stopped")
	return nil
}
