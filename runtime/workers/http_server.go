package workers

import (
	"context"
	goerrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPServerWorker serves a handler until the context ends, then shuts down gracefully.
type HTTPServerWorker struct {
	log             *slog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
	onShutdown      []func()
	ready           chan net.Addr
}

func NewHTTPServerWorker(log *slog.Logger, addr string, handler http.Handler, shutdownTimeout time.Duration) *HTTPServerWorker {
	return &HTTPServerWorker{
		log: log,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		ready:           make(chan net.Addr, 1),
	}
}

// OnShutdown registers a hook run once the server stopped accepting requests.
func (w *HTTPServerWorker) OnShutdown(fn func()) *HTTPServerWorker {
	w.onShutdown = append(w.onShutdown, fn)
	return w
}

// Ready yields the bound address once the listener is open.
func (w *HTTPServerWorker) Ready() <-chan net.Addr {
	return w.ready
}

func (w *HTTPServerWorker) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.server.Addr)
	if err != nil {
		return err
	}
	w.log.Info("HTTP server listening", "addr", listener.Addr().String())
	select {
	case w.ready <- listener.Addr():
	default:
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- w.server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if goerrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.shutdownTimeout)
	defer cancel()
	if err := w.server.Shutdown(shutdownCtx); err != nil {
		w.log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	for _, fn := range w.onShutdown {
		fn()
	}
	w.log.Info("HTTP server stopped")
	return nil
}
