package demo

import (
	"context"
	"sync"
	"testing"
	"time"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/keys"
)

var (
	materialOnce sync.Once
	material     [2]keys.Material
	materialErr  error
)

// testMaterial returns two unrelated key pairs, generated once per run.
func testMaterial(t *testing.T) (keys.Material, keys.Material) {
	t.Helper()
	materialOnce.Do(func() {
		for i := range material {
			material[i], materialErr = ephemeralMaterial("test")
			if materialErr != nil {
				return
			}
		}
	})
	if materialErr != nil {
		t.Fatalf("generate key material: %v", materialErr)
	}
	return material[0], material[1]
}

func testConfig() *Config {
	return &Config{
		Env:               "test",
		Addr:              ":0",
		LogLevel:          "info",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		MaxBodyBytes:      16384,
		CORSOrigins:       []string{"*"},
		IssueRate:         1000,
		IssueBurst:        1000,
		Keys:              KeysConfig{Source: KeySourceEphemeral, KeyID: "test", RedisPrefix: "jwtkey"},
		MetricsEnabled:    true,
	}
}

func newTestEngine(t *testing.T, cfg *Config, m keys.Material) *goJWT.Engine {
	t.Helper()
	kp, err := keys.Load(context.Background(), keys.StaticSource{Material: m})
	if err != nil {
		t.Fatalf("load keys: %v", err)
	}
	engine, err := NewEngine(cfg, kp, nil)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestServer(t *testing.T, cfg *Config) (*Server, *goJWT.Engine) {
	t.Helper()
	m, _ := testMaterial(t)
	engine := newTestEngine(t, cfg, m)
	return NewServer(cfg, engine, nil), engine
}
