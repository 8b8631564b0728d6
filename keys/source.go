package keys

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/MrEthical07/goJWT/jwt"
)

var (
	// ErrKeyNotFound is returned when a source holds no key material.
	ErrKeyNotFound = errors.New("key material not found")
	// ErrSourceUnavailable is returned when the backing store cannot be read.
	ErrSourceUnavailable = errors.New("key source unavailable")
)

// Material is PEM encoded key material as read from a Source. Either key may
// be empty, but not both.
type Material struct {
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
	KeyID         string
}

// Source yields key material.
type Source interface {
	Load(ctx context.Context) (Material, error)
}

// KeyPair is parsed key material. Private is nil for verify-only pairs.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
	KeyID   string
}

// CanSign reports whether the pair has a private key.
func (kp *KeyPair) CanSign() bool {
	return kp != nil && kp.Private != nil
}

// Load reads material from src and parses it. When only a private key is
// present the public key is derived from it; when both are present they must
// match.
func Load(ctx context.Context, src Source) (*KeyPair, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrKeyNotFound)
	}
	m, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(m)
}

// Parse converts already loaded material into a KeyPair.
func Parse(m Material) (*KeyPair, error) {
	if len(m.PrivateKeyPEM) == 0 && len(m.PublicKeyPEM) == 0 {
		return nil, ErrKeyNotFound
	}

	kp := &KeyPair{KeyID: m.KeyID}
	if len(m.PrivateKeyPEM) > 0 {
		priv, err := jwt.ParsePrivateKeyPEM(m.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("private key: %w", err)
		}
		kp.Private = priv
		kp.Public = &priv.PublicKey
	}
	if len(m.PublicKeyPEM) > 0 {
		pub, err := jwt.ParsePublicKeyPEM(m.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("public key: %w", err)
		}
		if kp.Private != nil && !kp.Private.PublicKey.Equal(pub) {
			return nil, fmt.Errorf("%w: public key does not match private key", jwt.ErrInvalidKey)
		}
		kp.Public = pub
	}
	return kp, nil
}

// StaticSource returns fixed material. Useful in tests and for keys already
// held in memory.
type StaticSource struct {
	Material Material
}

func (s StaticSource) Load(ctx context.Context) (Material, error) {
	if err := ctx.Err(); err != nil {
		return Material{}, err
	}
	return Material{
		PrivateKeyPEM: append([]byte(nil), s.Material.PrivateKeyPEM...),
		PublicKeyPEM:  append([]byte(nil), s.Material.PublicKeyPEM...),
		KeyID:         s.Material.KeyID,
	}, nil
}
