// Package goroutine runs background jobs, such as message consumers, under a
// concurrency cap with panic recovery and collected errors.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/pawhaven/internal/pkg/stacktrace"
)

// ErrClosed is returned by Go once Wait has been called.
var ErrClosed = errors.New("goroutine: manager is closed")

// ErrLimitReached is returned by Go when every slot is busy.
var ErrLimitReached = errors.New("goroutine: limit reached")

// Manager runs functions in goroutines with a concurrency limit.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu   sync.Mutex
	errs []error

	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager. A non-positive limit means 16 per CPU.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * 16
	}

	return &Manager{sema: make(chan struct{}, limit)}
}

// Go starts f if the manager is open and has a free slot. f receives ctx;
// a panic in f is logged and recorded as an error.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached", "job", name)
		return ErrLimitReached
	}

	g.wg.Go(func() {
		defer func() { <-g.sema }()

		if err := g.run(ctx, name, f); err != nil && !errors.Is(err, context.Canceled) {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	})

	return nil
}

func (g *Manager) run(ctx context.Context, name string, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in background job", "job", name, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in background job", "job", name, "panic", rvr, "stack", string(stack))
			}
			err = errors.New("goroutine: panic in " + name)
		}
	}()

	return f(ctx)
}

// Wait closes the manager to new work, blocks until running jobs return and
// joins their errors. Cancellation errors are not reported.
func (g *Manager) Wait() error {
	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
