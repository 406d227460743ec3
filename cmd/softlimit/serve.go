package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	softlimit "github.com/goliatone/go-softlimit"
	"github.com/goliatone/go-softlimit/components/softlimitapi"
	"github.com/goliatone/go-softlimit/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var tunables engineFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API, the browser runtime and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tunables.apply(cmd.Flags(), &a.cfg); err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			handler, err := a.handler(metrics.New(nil))
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:         a.cfg.Server.Addr,
				Handler:      handler,
				ReadTimeout:  a.cfg.Server.ReadTimeout.Duration,
				WriteTimeout: a.cfg.Server.WriteTimeout.Duration,
			}
			return a.listen(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	tunables.register(cmd.Flags())
	return cmd
}

// instrumentedMux wraps every registered handler with request metrics
// labelled by its pattern.
type instrumentedMux struct {
	mux     *http.ServeMux
	metrics *metrics.Metrics
}

func (m instrumentedMux) Handle(pattern string, handler http.Handler) {
	m.mux.Handle(pattern, m.metrics.Instrument(pattern, handler))
}

func (a *app) handler(m *metrics.Metrics) (http.Handler, error) {
	renderer, err := a.renderer(m)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	routes := instrumentedMux{mux: mux, metrics: m}

	component := softlimitapi.New(
		softlimitapi.WithLogger(a.logger),
		softlimitapi.WithValidator(a.validator(m)),
		softlimitapi.WithRenderer(renderer),
		softlimitapi.WithRuntime(softlimit.RuntimeAssetsFS(), a.cfg.Render.RuntimePath),
	)
	mounts, err := component.Mount(routes, a.cfg.Server.BasePath)
	if err != nil {
		return nil, err
	}

	if a.cfg.Server.MetricsPath != "" {
		mux.Handle(a.cfg.Server.MetricsPath, m.Handler())
	}
	routes.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}))

	a.logger.Debug("routes registered", "api", mounts.API, "runtime", mounts.Runtime, "metrics", a.cfg.Server.MetricsPath)
	return mux, nil
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func (a *app) listen(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
