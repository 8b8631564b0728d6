package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		tokens      = flag.Int("tokens", 10000, "number of tokens to pre-issue for the verify phases")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (issue + verify + validate)")
		bits        = flag.Int("bits", 2048, "RSA modulus size")
		redisAddr   = flag.String("redis-addr", "", "redis address holding key material; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "jwtkey", "redis key prefix")
		kid         = flag.String("kid", "loadtest", "key id")
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

	src := keys.NewRedisSource(client, *prefix, *kid)
	if err := seedKeys(ctx, client, src, *bits); err != nil {
		fmt.Fprintf(os.Stderr, "seed keys failed: %v\n", err)
		os.Exit(1)
	}
	kp, err := keys.Load(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load keys failed: %v\n", err)
		os.Exit(1)
	}

	cfg := goJWT.DefaultConfig()
	cfg.Issue.Issuer = "loadtest"
	cfg.Issue.Audience = []string{"loadtest"}
	cfg.Policy.Issuer = "loadtest"
	cfg.Policy.Audience = "loadtest"
	cfg.Issue.TTL = time.Hour

	engine, err := goJWT.New().
		WithConfig(cfg).
		WithKeyPair(kp).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	issued := make([]string, *tokens)
	fmt.Printf("issuing %d tokens...\n", *tokens)
	startSeed := time.Now()
	for i := range issued {
		tok, err := engine.Issue(ctx, goJWT.IssueRequest{Name: fmt.Sprintf("user-%d", i)})
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		issued[i] = tok
	}
	fmt.Printf("issued in %s\n", time.Since(startSeed).Round(time.Millisecond))

	issueStats := runPhase(*ops, *concurrency, 7919, func(_ *mrand.Rand, i int) error {
		_, err := engine.Issue(ctx, goJWT.IssueRequest{Name: fmt.Sprintf("op-%d", i)})
		return err
	})
	verifyStats := runPhase(*ops, *concurrency, 6151, func(r *mrand.Rand, _ int) error {
		ok, err := engine.Verify(ctx, issued[r.Intn(len(issued))])
		if err == nil && !ok {
			return goJWT.ErrTokenNotVerified
		}
		return err
	})
	validateStats := runPhase(*ops, *concurrency, 4201, func(r *mrand.Rand, _ int) error {
		_, err := engine.Validate(ctx, issued[r.Intn(len(issued))])
		return err
	})

	fmt.Println("---- results ----")
	printStats("issue", issueStats)
	printStats("verify", verifyStats)
	printStats("validate", validateStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("counters: sign_success=%d verify_success=%d verify_rejected=%d policy_rejected=%d\n",
		snap.Counters[goJWT.MetricSignSuccess],
		snap.Counters[goJWT.MetricVerifySuccess],
		snap.Counters[goJWT.MetricVerifyRejected],
		snap.Counters[goJWT.MetricPolicyRejected],
	)
}

// seedKeys stores a fresh key pair under the source's keys unless one is
// already present.
func seedKeys(ctx context.Context, client redis.UniversalClient, src *keys.RedisSource, bits int) error {
	n, err := client.Exists(ctx, src.PrivateKey()).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return err
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return err
	}
	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, src.PrivateKey(), pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}), 0)
		pipe.Set(ctx, src.PublicKey(), pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0)
		return nil
	})
	return err
}

func runPhase(ops, concurrency int, seed int64, op func(r *mrand.Rand, i int) error) phaseStats {
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
			r := mrand.New(mrand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
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
