package goJWT

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"
	"time"
)

var (
	engineKeysOnce sync.Once
	engineKeyA     *rsa.PrivateKey
	engineKeyB     *rsa.PrivateKey
	engineKeysErr  error
)

func testKeyPair(t testing.TB) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	engineKeysOnce.Do(func() {
		engineKeyA, engineKeysErr = rsa.GenerateKey(rand.Reader, 2048)
		if engineKeysErr != nil {
			return
		}
		engineKeyB, engineKeysErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if engineKeysErr != nil {
		t.Fatalf("generate rsa keys: %v", engineKeysErr)
	}
	return engineKeyA, engineKeyB
}

func encodePrivatePEM(t testing.TB, key *rsa.PrivateKey) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

func encodePublicPEM(t testing.TB, key *rsa.PublicKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// engineTestConfig returns a valid config whose issuance passes its own policy.
func engineTestConfig(t testing.TB) Config {
	t.Helper()
	priv, _ := testKeyPair(t)
	cfg := DefaultConfig()
	cfg.Keys.PrivateKeyPEM = encodePrivatePEM(t, priv)
	cfg.Keys.PublicKeyPEM = encodePublicPEM(t, &priv.PublicKey)
	cfg.Keys.KeyID = "test-key"
	cfg.Issue.Issuer = "issuer"
	cfg.Issue.Audience = []string{"clientID"}
	cfg.Policy.Issuer = "issuer"
	cfg.Policy.Audience = "clientID"
	return cfg
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Contains(s string) bool {
	return bytes.Contains([]byte(b.String()), []byte(s))
}
