package consent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

func TestCoordinator_ResolveWakesBegin(t *testing.T) {
	c := NewCoordinator()
	key := Key{HostID: "h1", Destination: "dest", DataUsage: mcpptype.UsageTransfer}

	var decision mcpptype.Decision
	var err error
	done := make(chan struct{})
	go func() {
		decision, err = c.Begin(context.Background(), "req-1", key, time.Second)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	gotKey, ok := c.Resolve("req-1", mcpptype.DecisionAllow)
	if !ok {
		t.Fatal("Resolve returned false, want true")
	}
	if gotKey != key {
		t.Errorf("keyCtx = %+v, want %+v", gotKey, key)
	}

	<-done
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if decision != mcpptype.DecisionAllow {
		t.Errorf("decision = %v, want allow", decision)
	}
}

func TestCoordinator_ResolveUnknownIDReturnsFalse(t *testing.T) {
	c := NewCoordinator()
	_, ok := c.Resolve("never-existed", mcpptype.DecisionAllow)
	if ok {
		t.Fatal("Resolve = true, want false for unknown request id")
	}
}

func TestCoordinator_ResolveAtMostOnce(t *testing.T) {
	c := NewCoordinator()
	key := Key{HostID: "h1", Destination: "dest", DataUsage: mcpptype.UsageTransfer}

	go c.Begin(context.Background(), "req-2", key, time.Second)
	time.Sleep(10 * time.Millisecond)

	var wg sync.WaitGroup
	results := make([]bool, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok := c.Resolve("req-2", mcpptype.DecisionAllow)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	trueCount := 0
	for _, ok := range results {
		if ok {
			trueCount++
		}
	}
	if trueCount != 1 {
		t.Fatalf("exactly one Resolve should win, got %d", trueCount)
	}
}

func TestCoordinator_BeginTimesOut(t *testing.T) {
	c := NewCoordinator()
	key := Key{HostID: "h1", Destination: "dest", DataUsage: mcpptype.UsageTransfer}

	_, err := c.Begin(context.Background(), "req-3", key, 10*time.Millisecond)
	var rerr *mcpptype.RPCError
	if err == nil {
		t.Fatal("Begin returned nil error, want timeout")
	}
	if !asRPCError(err, &rerr) || rerr.Code != mcpptype.ErrConsentTimeout {
		t.Errorf("err = %v, want ErrConsentTimeout", err)
	}

	// The dropped entry must not be resolvable afterward.
	if _, ok := c.Resolve("req-3", mcpptype.DecisionAllow); ok {
		t.Error("Resolve succeeded after timeout, want false")
	}
}

func TestCoordinator_BeginCancelsWithContext(t *testing.T) {
	c := NewCoordinator()
	key := Key{HostID: "h1", Destination: "dest", DataUsage: mcpptype.UsageTransfer}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := c.Begin(ctx, "req-4", key, time.Minute)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Begin returned nil error after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Begin did not return after context cancellation")
	}

	// A late decision after cancellation must be silently dropped.
	if _, ok := c.Resolve("req-4", mcpptype.DecisionDeny); ok {
		t.Error("Resolve succeeded after cancellation, want false")
	}
}

func TestCoordinator_RememberAndLookup(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	oldNow := now
	now = func() time.Time { return fixed }
	defer func() { now = oldNow }()

	c := NewCoordinator()
	key := Key{HostID: "h1", Destination: "dest", DataUsage: mcpptype.UsageTransfer}

	c.Remember(key, mcpptype.DecisionAllow, 5)

	d, ok := c.LookupRemembered(key)
	if !ok || d != mcpptype.DecisionAllow {
		t.Fatalf("lookup = (%v, %v), want (allow, true)", d, ok)
	}

	now = func() time.Time { return fixed.Add(6 * time.Minute) }
	if _, ok := c.LookupRemembered(key); ok {
		t.Error("lookup after expiry should return false")
	}
}

func asRPCError(err error, target **mcpptype.RPCError) bool {
	rerr, ok := err.(*mcpptype.RPCError)
	if ok {
		*target = rerr
	}
	return ok
}
