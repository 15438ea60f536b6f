package goroutine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestManager(t *testing.T) {
	t.Run("CollectsErrors", func(t *testing.T) {
		m := NewManager(2)
		boom := errors.New("boom")

		_ = m.Go(context.Background(), "ok", func(context.Context) error { return nil })
		_ = m.Go(context.Background(), "fail", func(context.Context) error { return boom })

		if err := m.Wait(); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("IgnoresCancellation", func(t *testing.T) {
		m := NewManager(1)
		ctx, cancel := context.WithCancel(context.Background())

		_ = m.Go(ctx, "consumer", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		cancel()

		if err := m.Wait(); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		m := NewManager(1)

		_ = m.Go(context.Background(), "panicky", func(context.Context) error { panic("oops") })

		err := m.Wait()
		if err == nil || !strings.Contains(err.Error(), "panicky") {
			t.Fatalf("expected panic error, got %v", err)
		}
	})

	t.Run("LimitReached", func(t *testing.T) {
		m := NewManager(1)
		release := make(chan struct{})

		if err := m.Go(context.Background(), "first", func(context.Context) error { <-release; return nil }); err != nil {
			t.Fatalf("first: %v", err)
		}
		err := m.Go(context.Background(), "second", func(context.Context) error { return nil })
		close(release)

		if !errors.Is(err, ErrLimitReached) {
			t.Fatalf("expected limit reached, got %v", err)
		}
		_ = m.Wait()
	})

	t.Run("ClosedAfterWait", func(t *testing.T) {
		m := NewManager(1)
		_ = m.Wait()

		if err := m.Go(context.Background(), "late", func(context.Context) error { return nil }); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected closed, got %v", err)
		}
	})
}
