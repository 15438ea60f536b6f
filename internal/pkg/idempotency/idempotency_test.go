package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

func TestExec(t *testing.T) {
	t.Run("CompletedBlocksRepeatUntilExpiry", func(t *testing.T) {
		// Arrange
		tracker, mr := newTestTracker(t)
		calls := 0
		fn := func(context.Context) error { calls++; return nil }

		// Act
		first := tracker.Exec(context.Background(), "resend:1", fn, WithStateTTL(time.Minute))
		second := tracker.Exec(context.Background(), "resend:1", fn, WithStateTTL(time.Minute))
		mr.FastForward(61 * time.Second)
		third := tracker.Exec(context.Background(), "resend:1", fn, WithStateTTL(time.Minute))

		// Assert
		if first != nil || third != nil {
			t.Fatalf("unexpected errors %v, %v", first, third)
		}
		if !errors.Is(second, ErrAlreadyCompleted) {
			t.Fatalf("expected completed, got %v", second)
		}
		if calls != 2 {
			t.Fatalf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("FailureReleasesKey", func(t *testing.T) {
		tracker, _ := newTestTracker(t)
		boom := errors.New("boom")

		err := tracker.Exec(context.Background(), "k", func(context.Context) error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected fn error, got %v", err)
		}

		if err := tracker.Exec(context.Background(), "k", func(context.Context) error { return nil }); err != nil {
			t.Fatalf("expected retry to run, got %v", err)
		}
	})

	t.Run("InProgress", func(t *testing.T) {
		tracker, _ := newTestTracker(t)

		err := tracker.Exec(context.Background(), "k", func(ctx context.Context) error {
			return tracker.Exec(ctx, "k", func(context.Context) error { return nil })
		})

		if !errors.Is(err, ErrAlreadyInProgress) {
			t.Fatalf("expected in progress, got %v", err)
		}
	})

	t.Run("CorruptState", func(t *testing.T) {
		tracker, mr := newTestTracker(t)
		if err := mr.Set("idempotency:k", "weird"); err != nil {
			t.Fatalf("seed: %v", err)
		}

		err := tracker.Exec(context.Background(), "k", func(context.Context) error { return nil })

		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})
}
