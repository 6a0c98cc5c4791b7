package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testManager(t *testing.T, now func() time.Time) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		Secret:         testSecret,
		Issuer:         "tokenauth-test",
		ValidFor:       time.Hour,
		RefreshableFor: 10 * time.Hour,
		Now:            now,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{
			name: "short secret",
			cfg: Config{
				Secret:         []byte("too-short"),
				ValidFor:       time.Hour,
				RefreshableFor: 2 * time.Hour,
			},
		},
		{
			name: "zero valid duration",
			cfg: Config{
				Secret:         testSecret,
				RefreshableFor: time.Hour,
			},
		},
		{
			name: "refreshable not exceeding valid",
			cfg: Config{
				Secret:         testSecret,
				ValidFor:       time.Hour,
				RefreshableFor: time.Hour,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMintParseRoundtrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := testManager(t, func() time.Time { return now })

	raw, minted, err := m.Mint("u1", "alice", "ROLE_USER user.read")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if strings.Count(raw, ".") != 2 {
		t.Fatalf("expected compact three-segment token, got %q", raw)
	}

	parsed, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.UserID != "u1" || parsed.Subject != "alice" {
		t.Fatalf("unexpected identity claims: %+v", parsed)
	}
	if parsed.Scope != "ROLE_USER user.read" {
		t.Fatalf("unexpected scope %q", parsed.Scope)
	}
	if parsed.Issuer != "tokenauth-test" {
		t.Fatalf("unexpected issuer %q", parsed.Issuer)
	}
	if parsed.ID != minted.ID {
		t.Fatalf("token id mismatch: %s vs %s", parsed.ID, minted.ID)
	}
	if !parsed.IssuedAt.Time.Equal(now) {
		t.Fatalf("unexpected iat %v", parsed.IssuedAt.Time)
	}
	if !parsed.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected exp %v", parsed.ExpiresAt.Time)
	}
}

func TestMintAssignsUniqueTokenIDs(t *testing.T) {
	m := testManager(t, nil)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		_, claims, err := m.Mint("u1", "alice", "")
		if err != nil {
			t.Fatalf("Mint failed: %v", err)
		}
		if seen[claims.ID] {
			t.Fatalf("duplicate token id %s", claims.ID)
		}
		seen[claims.ID] = true
	}
}

func TestParseDoesNotValidateExpiry(t *testing.T) {
	past := time.Unix(1600000000, 0)
	m := testManager(t, func() time.Time { return past })

	raw, _, err := m.Mint("u1", "alice", "")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// The token expired years ago; expiry policy belongs to the caller.
	if _, err := m.Parse(raw); err != nil {
		t.Fatalf("Parse of expired token failed: %v", err)
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	m := testManager(t, nil)

	raw, _, err := m.Mint("u1", "alice", "")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	other, err := NewManager(Config{
		Secret:         []byte("fedcba9876543210fedcba9876543210"),
		ValidFor:       time.Hour,
		RefreshableFor: 10 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := other.Parse(raw); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	m := testManager(t, nil)

	cases := []string{
		"",
		"garbage",
		"a.b",
		"a.b.c.d",
		"!!!.###.$$$",
	}
	for _, raw := range cases {
		if _, err := m.Parse(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%q: expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestParseRejectsAlgNone(t *testing.T) {
	m := testManager(t, nil)

	// {"alg":"none","typ":"JWT"}.{"uid":"u1","jti":"x","iat":1,"exp":2}.
	raw := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJ1aWQiOiJ1MSIsImp0aSI6IngiLCJpYXQiOjEsImV4cCI6Mn0."

	if _, err := m.Parse(raw); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestRefreshDeadline(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := testManager(t, func() time.Time { return now })

	_, claims, err := m.Mint("u1", "alice", "")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	want := now.Add(10 * time.Hour)
	if got := m.RefreshDeadline(claims); !got.Equal(want) {
		t.Fatalf("RefreshDeadline = %v, want %v", got, want)
	}
}
