package wctx

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Serve dispatches the container-started notification, runs the HTTP server,
// and on ctx cancellation or SIGINT/SIGTERM drains the server before
// dispatching the container-stopping notification. A failed start
// notification aborts serving; stop notification errors are returned after
// the server has shut down.
func (c *Container) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := c.NotifyStarted(ctx); err != nil {
		c.logger.Error("container start aborted", "error", err)
		return err
	}

	srv := &http.Server{
		Addr:    c.addr,
		Handler: c.router,
	}

	serveErr := make(chan error, 1)
	go func() {
		c.logger.Info("starting server", "addr", c.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case err := <-serveErr:
		runErr = err
	case <-ctx.Done():
	case <-quit:
	}

	c.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.logger.Error("server shutdown failed", "error", err)
		runErr = errors.Join(runErr, err)
	}

	if err := c.NotifyStopping(context.Background()); err != nil {
		c.logger.Error("container stop listeners failed", "error", err)
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

// NormalizePort ensures ports always include the leading colon and fall back
// to a sensible default when unset.
func NormalizePort(port, fallback string) string {
	p := port
	if p == "" {
		p = fallback
	}
	if p == "" {
		return ":8080"
	}
	for i := 0; i < len(p); i++ {
		if p[i] == ':' {
			return p
		}
	}
	return ":" + p
}
