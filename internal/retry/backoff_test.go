package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastBackoff(attempts int) *Backoff {
	return &Backoff{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  attempts,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := fastBackoff(3).Do(context.Background(), func(attempt int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fastBackoff(5).Do(context.Background(), func(attempt int) error {
		calls++
		if attempt != calls {
			t.Errorf("attempt = %d on call %d", attempt, calls)
		}
		if attempt < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	base := errors.New("still failing")
	calls := 0
	err := fastBackoff(3).Do(context.Background(), func(int) error {
		calls++
		return base
	})
	if !errors.Is(err, base) {
		t.Fatalf("Do = %v, want wrapped %v", err, base)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	base := errors.New("no such address")
	calls := 0
	err := fastBackoff(5).Do(context.Background(), func(int) error {
		calls++
		return Permanent(base)
	})
	if err != base {
		t.Fatalf("Do = %v, want unwrapped %v", err, base)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDoHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Backoff{InitialDelay: time.Hour, MaxAttempts: 0}

	done := make(chan error, 1)
	go func() {
		done <- b.Do(ctx, func(int) error { return errors.New("nope") })
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Do = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestPermanentNilPassthrough(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) != nil")
	}
	if IsPermanent(errors.New("plain")) {
		t.Error("plain error reported permanent")
	}
	if !IsPermanent(Permanent(errors.New("x"))) {
		t.Error("wrapped error not reported permanent")
	}
}

func TestAddJitterStaysInRange(t *testing.T) {
	d := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := addJitter(d)
		if got < 75*time.Millisecond || got > 125*time.Millisecond {
			t.Fatalf("addJitter(%v) = %v, outside +/-25%%", d, got)
		}
	}
}
