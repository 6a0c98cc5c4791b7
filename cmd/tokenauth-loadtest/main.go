package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	tokenauth "github.com/vqnguyen/tokenauth"
)

type tokenState struct {
	raw string
	mu  sync.Mutex
}

func main() {
	var (
		tokens      = flag.Int("tokens", 100000, "number of tokens to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (verify + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ta", "revocation key prefix")
	)
	flag.Parse()

	if *tokens <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "tokens, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := tokenauth.DefaultConfig()
	cfg.Token.SigningSecret = []byte("loadtest-secret-loadtest-secret-0001")
	cfg.Revocation.RedisPrefix = *prefix
	cfg.Metrics.Enabled = false

	engine, err := tokenauth.New().
		WithConfig(cfg).
		WithRedis(client).
		WithPrincipalRepository(newSeedRepository(*tokens)).
		WithPasswordHasher(plaintextHasher{}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]tokenState, *tokens)
	fmt.Printf("seeding %d tokens...\n", *tokens)
	startSeed := time.Now()
	for i := 0; i < *tokens; i++ {
		raw, err := engine.Issue(ctx, seedPrincipal(i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = tokenState{raw: raw}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	verifyStats := runVerifyPhase(ctx, engine, states, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, engine, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("verify", verifyStats)
	printStats("refresh", refreshStats)
}

func runVerifyPhase(ctx context.Context, engine *tokenauth.Engine, states []tokenState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				raw := state.raw
				state.mu.Unlock()

				t0 := time.Now()
				_, err := engine.Verify(ctx, raw, false)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, engine *tokenauth.Engine, states []tokenState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				res, err := engine.Refresh(ctx, state.raw)
				d := time.Since(t0)
				if err == nil {
					state.raw = res.Token
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func seedPrincipal(i int) *tokenauth.Principal {
	return &tokenauth.Principal{
		ID:       fmt.Sprintf("user-%d", i),
		Username: fmt.Sprintf("user-%d", i),
		Roles: []tokenauth.RoleRef{
			{Name: "USER", Permissions: []tokenauth.PermissionRef{{Name: "user.read"}}},
		},
	}
}

// seedRepository resolves every seeded username without touching a
// database, so the refresh phase measures token work, not lookups.
type seedRepository struct {
	count int
}

func newSeedRepository(count int) *seedRepository {
	return &seedRepository{count: count}
}

func (s *seedRepository) FindByUsername(_ context.Context, username string) (*tokenauth.Principal, error) {
	var i int
	if _, err := fmt.Sscanf(username, "user-%d", &i); err != nil || i < 0 || i >= s.count {
		return nil, nil
	}
	return seedPrincipal(i), nil
}

func (s *seedRepository) FindByID(ctx context.Context, id string) (*tokenauth.Principal, error) {
	return s.FindByUsername(ctx, id)
}

func (s *seedRepository) Create(_ context.Context, _ tokenauth.Principal) error {
	return fmt.Errorf("seed repository is read-only")
}

func (s *seedRepository) UpdateCredential(_ context.Context, _, _ string) error {
	return fmt.Errorf("seed repository is read-only")
}

// plaintextHasher skips Argon2 cost during seeding; the loadtest never
// authenticates with passwords.
type plaintextHasher struct{}

func (plaintextHasher) Hash(password string) (string, error) { return password, nil }

func (plaintextHasher) Verify(password, hash string) (bool, error) {
	return password == hash, nil
}
