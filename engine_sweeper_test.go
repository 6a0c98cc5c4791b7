package tokenauth

import (
	"context"
	"testing"
	"time"
)

func TestPurgeExpiredRemovesOnlyPastHorizon(t *testing.T) {
	repo := newMockRepository()
	p := seedUser(t, repo, "u1", "alice", "correct-horse", userRoles())

	engine := newTestEngine(t, testConfig(), repo)
	clock := installFakeClock(engine)
	ctx := context.Background()

	raw, err := engine.Issue(ctx, &p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := engine.Logout(ctx, raw); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// The record's retention horizon is the end of the grace window.
	purged, err := engine.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 0 {
		t.Fatalf("expected nothing purged before horizon, got %d", purged)
	}

	clock.Advance(10*time.Hour + time.Second)

	purged, err = engine.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 record purged, got %d", purged)
	}

	size, err := engine.revocations.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 0 {
		t.Fatalf("expected empty index after purge, got %d", size)
	}
	if got := engine.MetricsSnapshot().Counters[MetricRevocationPurged]; got != 1 {
		t.Fatalf("expected 1 purged metric, got %d", got)
	}
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	repo := newMockRepository()

	cfg := testConfig()
	cfg.Revocation.SweepInterval = 5 * time.Millisecond

	engine := newTestEngine(t, cfg, repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.RunSweeper(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
