// Package lifecycle sequences the teardown of server components: the HTTP
// server, the sync outbox, the monitor, and finally the stores they write to.
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc stops one component. It must respect the context deadline.
type ShutdownFunc func(ctx context.Context) error

type entry struct {
	name string
	stop ShutdownFunc
}

// Manager runs registered teardowns in reverse registration order, so a
// component never outlives something it depends on: register the store
// before the repository that writes to it, the repository before the server
// that serves it.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	entries []entry
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register queues a teardown under a name used only for logging. Nil
// teardowns are ignored.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{name: name, stop: fn})
}

// Shutdown tears everything down, newest registration first. A failing
// teardown is logged and joined into the returned error; the remaining
// components still get their turn.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.mu.Lock()
	entries := make([]entry, len(m.entries))
	copy(entries, m.entries)
	m.mu.Unlock()

	var errs error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := e.stop(ctx); err != nil {
			m.logger.Error("component teardown failed", zap.String("component", e.name), zap.Error(err))
			errs = errors.Join(errs, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", e.name))
	}
	return errs
}

// Listen watches for SIGINT/SIGTERM in the background and fires cancel once
// the first one arrives, letting main fall through to Shutdown.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(signals)
		sig := <-signals
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
