// Package debugserver serves pprof profiles and Prometheus metrics on a loopback address.
package debugserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.Handle("/metrics", promhttp.Handler())
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	Handle(mux)
	return mux
}

// Launch starts the debug server on addr, for example "[::1]:6060", and stops it when ctx is done. The bound address
// is returned so that port 0 can be used.
func Launch(ctx context.Context, addr string, logger *slog.Logger) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrap(err, "listen", slog.String("addr", addr))
	}
	srv := &http.Server{
		Handler:           newServeMux(),
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd // profiles stream for longer than the header timeout.
	}
	bound := listener.Addr().String()
	logger.LogAttrs(ctx, slog.LevelInfo, "starting debug server", slog.String("addr", bound))

	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "debug server failed", errors.SlogError(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.LogAttrs(shutdownCtx, slog.LevelError, "debug server shutdown failed", errors.SlogError(shutdownErr))
		}
	}()
	return bound, nil
}
