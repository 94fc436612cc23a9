package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func lockedErr() error {
	return errors.New("stats query failed: database is locked (5) (SQLITE_BUSY)")
}

func TestDo_RetriesOnContention(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{MaxAttempts: 3}, IsContention, func() error {
		attempts++
		return lockedErr()
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_NoRetryOnPermanentError(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{MaxAttempts: 3}, IsContention, func() error {
		attempts++
		return errors.New("no such table: disk_stats")
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{MaxAttempts: 3}, IsContention, func() error {
		attempts++
		if attempts == 1 {
			return lockedErr()
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, Config{MaxAttempts: 3}, IsContention, func() error {
		attempts++
		return lockedErr()
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected 0 attempts, got %d", attempts)
	}
}

func TestIsContention_WrappedError(t *testing.T) {
	err := fmt.Errorf("statstore: query failed: %w", lockedErr())
	if !IsContention(err) {
		t.Fatal("expected wrapped lock error to count as contention")
	}
}

func TestIsContention_CanceledIsNot(t *testing.T) {
	if IsContention(context.Canceled) {
		t.Fatal("context cancellation must never be retried")
	}
}

func TestBackoffDelay_NoBaseDelay(t *testing.T) {
	if delay := backoffDelay(0, time.Second, 1); delay != 0 {
		t.Fatalf("expected zero delay, got %v", delay)
	}
}
