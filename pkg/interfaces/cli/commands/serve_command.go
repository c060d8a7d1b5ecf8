package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpapi "github.com/vsinha/procureplan/pkg/interfaces/http"
)

const shutdownTimeout = 10 * time.Second

// ServeCommand runs the HTTP API until ctx is canceled
type ServeCommand struct {
	addr    string
	runtime *Runtime
}

// NewServeCommand creates a new serve command. An empty addr uses the configured one.
func NewServeCommand(addr string, runtime *Runtime) *ServeCommand {
	if addr == "" {
		addr = runtime.Settings.HTTPAddr
	}
	return &ServeCommand{addr: addr, runtime: runtime}
}

// Execute runs the serve command
func (c *ServeCommand) Execute(ctx context.Context) error {
	app := httpapi.NewApp(c.runtime.Orchestrator, c.runtime.Logger)
	srv := httpapi.NewServer(c.addr, httpapi.NewRouter(app))

	errCh := make(chan error, 1)
	go func() {
		c.runtime.Logger.Info("server_starting", "addr", c.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	c.runtime.Logger.Info("server_stopping", "addr", c.addr)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
