package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/store"
	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/watcher"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/server"
)

type serveOptions struct {
	addr  string
	watch bool
}

func newServeCmd(root *rootFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the change bridge, the stylesheet and the relay stream over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (defaults to server.addr)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload the palette when the project file changes")

	return cmd
}

func runServe(cmd *cobra.Command, root *rootFlags, opts *serveOptions) error {
	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}

	snapshots, err := store.NewSnapshotStore(app.Config.Snapshots.Dir)
	if err != nil {
		return newCommandError("serve", "opening snapshot directory", err, "Set snapshots.dir to a writable directory.")
	}

	addr := opts.addr
	if addr == "" {
		addr = app.Config.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		app.Hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = app.Service.Run(ctx)
	}()

	if opts.watch && app.ConfigPath != "" {
		w := watcher.New(app.ConfigPath, func(string) {
			reloadCtx := ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())
			if _, err := app.Reload(reloadCtx); err != nil {
				app.Logger.Error(err, "reload failed")
			}
		}, app.Logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				app.Logger.Error(err, "watcher stopped")
			}
		}()
	}

	srv := server.New(server.Dependencies{
		Service:   app.Service,
		Hub:       app.Hub,
		Relay:     app.Relay,
		Metrics:   app.Metrics.Handler(),
		Snapshots: snapshots,
		Logger:    app.Logger,

		WriteLimiter: rate.NewLimiter(rate.Limit(app.Config.Server.UpdateRate), app.Config.Server.UpdateBurst),
	})

	err = srv.ListenAndServe(ctx, addr)
	stop()
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return newCommandError("serve", "listening on "+addr, err, "Pick a free port with --addr.")
	}
	return nil
}
