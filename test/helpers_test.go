package test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"

	goJWT "github.com/MrEthical07/goJWT"
)

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
	keyErr  error
)

func testKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if keyErr != nil {
		t.Fatalf("GenerateKey failed: %v", keyErr)
	}
	return key
}

func pemPair(t testing.TB, k *rsa.PrivateKey) (priv, pub []byte) {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey failed: %v", err)
	}
	priv = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k)})
	pub = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, pub
}

func newEngine(t testing.TB) *goJWT.Engine {
	t.Helper()
	priv, pub := pemPair(t, testKey(t))

	cfg := goJWT.DefaultConfig()
	cfg.Keys.PrivateKeyPEM = priv
	cfg.Keys.PublicKeyPEM = pub
	cfg.Keys.KeyID = "k1"
	cfg.Issue.Issuer = "issuer"
	cfg.Issue.Audience = []string{"clientID"}
	cfg.Policy.Issuer = "issuer"
	cfg.Policy.Audience = "clientID"

	engine, err := goJWT.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
