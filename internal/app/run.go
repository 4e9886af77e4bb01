package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Run listens on the configured address and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Listen)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts the server down
// and detaches every observer.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.logger.Debug("App.Serve method started.")
	defer a.logger.Debug("App.Serve method finished.")

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("🕸️ Mesh visualizer listening", "address", ln.Addr().String())
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down...")
	case err := <-serveErr:
		a.logger.Error("Server failed unexpectedly", "error", err)
		runErr = fmt.Errorf("server failed: %w", err)
	}

	// Hijacked websocket connections are not tracked by Shutdown; closing
	// the app detaches them.
	closeErr := a.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server shutdown failed", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	<-serveErr

	if runErr == nil {
		runErr = closeErr
	}
	a.logger.Info("🏁 Server stopped.")
	return runErr
}
