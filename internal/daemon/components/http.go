package components

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vozlegal/intake/internal/daemon"
	"github.com/vozlegal/intake/internal/httpapi"
)

// HTTPServerComponent runs the webhook API as a daemon component.
type HTTPServerComponent struct {
	server *httpapi.Server

	mu      sync.Mutex
	cancel  context.CancelFunc
	errCh   chan error
	started bool
}

func NewHTTPServerComponent(server *httpapi.Server) *HTTPServerComponent {
	return &HTTPServerComponent{server: server}
}

func (h *HTTPServerComponent) Name() string { return "http-server" }

func (h *HTTPServerComponent) Dependencies() []string { return nil }

func (h *HTTPServerComponent) Init(ctx context.Context) error { return nil }

func (h *HTTPServerComponent) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h.cancel = cancel
	h.errCh = make(chan error, 1)
	h.started = true

	errCh := h.errCh
	go func() {
		if err := h.server.Start(runCtx); err != nil {
			slog.Error("HTTP server exited", "error", err)
			errCh <- err
		}
		close(errCh)
	}()
	return nil
}

func (h *HTTPServerComponent) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return nil
	}
	h.started = false
	h.cancel()

	select {
	case err := <-h.errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HTTPServerComponent) Health(ctx context.Context) daemon.ComponentHealth {
	h.mu.Lock()
	started := h.started
	errCh := h.errCh
	h.mu.Unlock()

	if !started {
		return daemon.Unhealthy("not started")
	}
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return daemon.Unhealthy(err.Error())
		}
		return daemon.Unhealthy("server exited")
	default:
	}
	return daemon.Healthy()
}
