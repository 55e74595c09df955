package debounce

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGateNewestSequenceWins(t *testing.T) {
	t.Parallel()

	gate := NewGate(10 * time.Millisecond)
	ctx := context.Background()

	var (
		wg     sync.WaitGroup
		oldErr error
		newErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		oldErr = gate.Wait(ctx, "session-1", 1)
	}()
	time.Sleep(2 * time.Millisecond)
	go func() {
		defer wg.Done()
		newErr = gate.Wait(ctx, "session-1", 2)
	}()
	wg.Wait()

	if !errors.Is(oldErr, ErrSuperseded) {
		t.Fatalf("older sequence should be superseded, got %v", oldErr)
	}
	if newErr != nil {
		t.Fatalf("newest sequence should pass, got %v", newErr)
	}
}

func TestGateRejectsStaleRegistration(t *testing.T) {
	t.Parallel()

	gate := NewGate(0)
	if !gate.Register("k", 5) {
		t.Fatal("first registration should win")
	}
	if gate.Register("k", 3) {
		t.Fatal("older sequence must not displace a newer one")
	}
	if err := gate.Wait(context.Background(), "k", 3); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded, got %v", err)
	}
}

func TestGateStillCurrentAfterFetch(t *testing.T) {
	t.Parallel()

	gate := NewGate(0)
	if err := gate.Wait(context.Background(), "field", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a newer keystroke lands while the fetch for seq 1 is in flight
	gate.Register("field", 2)

	if gate.StillCurrent("field", 1) {
		t.Fatal("seq 1 response must be discarded after seq 2 registered")
	}
	if !gate.StillCurrent("field", 2) {
		t.Fatal("seq 2 should remain current")
	}
}

func TestGateWaitHonorsContextCancel(t *testing.T) {
	t.Parallel()

	gate := NewGate(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	if err := gate.Wait(ctx, "k", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestCooldownSuppressesDuplicates(t *testing.T) {
	t.Parallel()

	cd := NewCooldown(time.Minute)
	now := time.Unix(1000, 0)
	cd.now = func() time.Time { return now }

	if !cd.Allow("scanner-1") {
		t.Fatal("first scan should pass")
	}
	if cd.Allow("scanner-1") {
		t.Fatal("duplicate scan inside window should be dropped")
	}

	now = now.Add(61 * time.Second)
	if !cd.Allow("scanner-1") {
		t.Fatal("scan after window should pass")
	}
}

func TestCooldownResetReopensImmediately(t *testing.T) {
	t.Parallel()

	cd := NewCooldown(time.Minute)
	if !cd.Allow("s") {
		t.Fatal("first event should pass")
	}
	cd.Reset("s")
	if !cd.Allow("s") {
		t.Fatal("event after reset should pass")
	}
}
