package tokenauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vqnguyen/tokenauth/password"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type mockRepository struct {
	mu     sync.Mutex
	byID   map[string]Principal
	byName map[string]string

	findErr   error
	createErr error
	updateErr error

	createCalls int
	updateCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		byID:   map[string]Principal{},
		byName: map[string]string{},
	}
}

func (m *mockRepository) put(p Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = p
	m.byName[p.Username] = p.ID
}

func (m *mockRepository) FindByUsername(_ context.Context, username string) (*Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	id, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	p := m.byID[id]
	return &p, nil
}

func (m *mockRepository) FindByID(_ context.Context, id string) (*Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockRepository) Create(_ context.Context, p Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[p.ID] = p
	m.byName[p.Username] = p.ID
	return nil
}

func (m *mockRepository) UpdateCredential(_ context.Context, id, credentialHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	p.CredentialHash = credentialHash
	m.byID[id] = p
	return nil
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Token.SigningSecret = testSecret
	cfg.Token.ValidDuration = time.Hour
	cfg.Token.RefreshableDuration = 10 * time.Hour
	// Minimum Argon2 cost keeps credential tests fast.
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, repo PrincipalRepository) *Engine {
	t.Helper()

	_, rdb := newTestRedis(t)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPrincipalRepository(repo).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

// fakeClock replaces the engine clock with one the test can advance.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func installFakeClock(engine *Engine) *fakeClock {
	fc := &fakeClock{now: time.Now()}
	engine.clock = func() time.Time {
		fc.mu.Lock()
		defer fc.mu.Unlock()
		return fc.now
	}
	return fc
}

func (fc *fakeClock) Advance(d time.Duration) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.now = fc.now.Add(d)
}

func testHasher(t *testing.T) *password.Argon2 {
	t.Helper()

	h, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func seedUser(t *testing.T, repo *mockRepository, id, username, pass string, roles []RoleRef) Principal {
	t.Helper()

	hash, err := testHasher(t).Hash(pass)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	p := Principal{
		ID:             id,
		Username:       username,
		CredentialHash: hash,
		Roles:          roles,
	}
	repo.put(p)
	return p
}
