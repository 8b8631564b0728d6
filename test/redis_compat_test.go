//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisMode describes which Redis backend the compatibility suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				// Flush the test DB to avoid state leaking between runs.
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	// Cluster mode: when REDIS_CLUSTER_ADDRS is set (comma-separated).
	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				clusterAddrs := splitAddrs(addrs)
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: clusterAddrs})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis cluster: %v", err)
				}
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}

	// Sentinel mode: when REDIS_SENTINEL_ADDRS and REDIS_SENTINEL_MASTER are set.
	if addrs := os.Getenv("REDIS_SENTINEL_ADDRS"); addrs != "" {
		master := os.Getenv("REDIS_SENTINEL_MASTER")
		if master == "" {
			master = "mymaster"
		}
		modes = append(modes, redisMode{
			name: "sentinel",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewFailoverClient(&redis.FailoverOptions{
					MasterName:    master,
					SentinelAddrs: splitAddrs(addrs),
				})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis sentinel: %v", err)
				}
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	return modes
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

func seedKeyPair(t *testing.T, rdb redis.UniversalClient, src *keys.RedisSource, withPrivate bool) {
	t.Helper()
	priv, pub := pemPair(t, testKey(t))
	ctx := context.Background()
	if withPrivate {
		if err := rdb.Set(ctx, src.PrivateKey(), priv, time.Hour).Err(); err != nil {
			t.Fatalf("set private: %v", err)
		}
	}
	if err := rdb.Set(ctx, src.PublicKey(), pub, time.Hour).Err(); err != nil {
		t.Fatalf("set public: %v", err)
	}
}

// TestRedisCompat_KeyPairRoundTrip loads a full pair and issues a token that
// the same engine validates.
func TestRedisCompat_KeyPairRoundTrip(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			src := keys.NewRedisSource(rdb, "compat", "k1")
			seedKeyPair(t, rdb, src, true)

			ctx := context.Background()
			kp, err := keys.Load(ctx, src)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !kp.CanSign() || kp.KeyID != "k1" {
				t.Fatalf("unexpected pair kid=%q canSign=%v", kp.KeyID, kp.CanSign())
			}

			engine, err := goJWT.New().WithKeyPair(kp).Build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			defer engine.Close()

			token, err := engine.Issue(ctx, goJWT.IssueRequest{Name: "alice"})
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			if _, err := engine.Validate(ctx, token); err != nil {
				t.Fatalf("validate: %v", err)
			}
		})
	}
}

// TestRedisCompat_VerifyOnly checks that a public-only entry yields an engine
// that verifies but cannot sign.
func TestRedisCompat_VerifyOnly(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			src := keys.NewRedisSource(rdb, "compat", "pub-only")
			seedKeyPair(t, rdb, src, false)

			ctx := context.Background()
			kp, err := keys.Load(ctx, src)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			engine, err := goJWT.New().WithKeyPair(kp).Build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			defer engine.Close()

			if _, err := engine.Sign(ctx, goJWT.DemoClaims()); !errors.Is(err, goJWT.ErrSigningKeyMissing) {
				t.Fatalf("expected ErrSigningKeyMissing, got %v", err)
			}

			signer := newEngine(t)
			token, err := signer.Sign(ctx, goJWT.DemoClaims())
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if ok, err := engine.Verify(ctx, token); !ok || err != nil {
				t.Fatalf("verify: %v %v", ok, err)
			}
		})
	}
}

// TestRedisCompat_MissingKid must not fall back to another kid's material.
func TestRedisCompat_MissingKid(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			seedKeyPair(t, rdb, keys.NewRedisSource(rdb, "compat", "present"), true)

			_, err := keys.Load(context.Background(), keys.NewRedisSource(rdb, "compat", "absent"))
			if !errors.Is(err, keys.ErrKeyNotFound) {
				t.Fatalf("expected ErrKeyNotFound, got %v", err)
			}
		})
	}
}
