package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
)

func TestParseKeysPEM(t *testing.T) {
	priv, _ := testKeys(t)

	parsed, err := ParsePrivateKeyPEM(privatePEM(t, priv))
	if err != nil {
		t.Fatalf("parse private: %v", err)
	}
	if !parsed.Equal(priv) {
		t.Fatal("parsed private key differs")
	}

	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	if _, err := ParsePrivateKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})); err != nil {
		t.Fatalf("parse pkcs8: %v", err)
	}

	pub, err := ParsePublicKeyPEM(publicPEM(t, &priv.PublicKey))
	if err != nil {
		t.Fatalf("parse public: %v", err)
	}
	if !pub.Equal(&priv.PublicKey) {
		t.Fatal("parsed public key differs")
	}
}

func TestParseKeysRejects(t *testing.T) {
	if _, err := ParsePrivateKeyPEM(nil); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("empty private: %v", err)
	}
	if _, err := ParsePublicKeyPEM([]byte("garbage")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("garbage public: %v", err)
	}

	small, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParsePrivateKeyPEM(privatePEM(t, small)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("1024-bit private: expected ErrInvalidKey, got %v", err)
	}
	if _, err := ParsePublicKeyPEM(publicPEM(t, &small.PublicKey)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("1024-bit public: expected ErrInvalidKey, got %v", err)
	}
	if _, err := Sign(NewHeader(), demoClaims(), small); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("1024-bit sign: expected ErrInvalidKey, got %v", err)
	}
}
