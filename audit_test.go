package tokenauth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func newAuditTestEngine(t *testing.T, sink AuditSink, repo PrincipalRepository) *Engine {
	t.Helper()

	_, rdb := newTestRedis(t)

	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	cfg.Audit.DropIfFull = false

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPrincipalRepository(repo).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func waitForEvent(t *testing.T, sink *captureSink, eventType string) AuditEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.events:
			if event.EventType == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}

func TestAuditEventsOnAuthenticate(t *testing.T) {
	repo := newMockRepository()
	seedUser(t, repo, "u1", "alice", "correct-horse", userRoles())

	sink := newCaptureSink(64)
	engine := newAuditTestEngine(t, sink, repo)
	ctx := context.Background()

	if _, err := engine.Authenticate(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	event := waitForEvent(t, sink, "auth_success")
	if !event.Success {
		t.Fatal("expected success=true")
	}
	if event.UserID != "u1" {
		t.Fatalf("expected user u1, got %s", event.UserID)
	}
	if event.TokenID == "" {
		t.Fatal("expected token id on auth_success event")
	}

	_, _ = engine.Authenticate(ctx, "alice", "wrong-horse")
	event = waitForEvent(t, sink, "auth_failure")
	if event.Success {
		t.Fatal("expected success=false")
	}
	if event.Error != "unauthenticated" {
		t.Fatalf("expected error code unauthenticated, got %q", event.Error)
	}
}

func TestAuditEventsOnLogout(t *testing.T) {
	repo := newMockRepository()
	p := seedUser(t, repo, "u1", "alice", "correct-horse", userRoles())

	sink := newCaptureSink(64)
	engine := newAuditTestEngine(t, sink, repo)
	ctx := context.Background()

	raw, err := engine.Issue(ctx, &p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := engine.Logout(ctx, raw); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	event := waitForEvent(t, sink, "revocation_written")
	if event.TokenID == "" {
		t.Fatal("expected token id on revocation event")
	}
	waitForEvent(t, sink, "logout")

	if err := engine.Logout(ctx, raw); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	waitForEvent(t, sink, "logout_noop")
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	repo := newMockRepository()
	seedUser(t, repo, "u1", "alice", "correct-horse", userRoles())

	sink := &countingSink{}
	_, rdb := newTestRedis(t)

	cfg := testConfig()
	cfg.Audit.Enabled = false

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPrincipalRepository(repo).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := engine.Authenticate(context.Background(), "alice", "correct-horse"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if sink.Count() != 0 {
		t.Fatalf("expected no audit events when disabled, got %d", sink.Count())
	}
}

func TestAuditCloseDrainsBufferedEvents(t *testing.T) {
	repo := newMockRepository()
	seedUser(t, repo, "u1", "alice", "correct-horse", userRoles())

	sink := &countingSink{}
	engine := newAuditTestEngine(t, sink, repo)

	const logins = 10
	for i := 0; i < logins; i++ {
		if _, err := engine.Authenticate(context.Background(), "alice", "correct-horse"); err != nil {
			t.Fatalf("Authenticate %d failed: %v", i, err)
		}
	}

	engine.Close()

	if got := sink.Count(); got < logins {
		t.Fatalf("expected at least %d events after Close, got %d", logins, got)
	}
	if engine.AuditDropped() != 0 {
		t.Fatalf("expected no drops, got %d", engine.AuditDropped())
	}
}
