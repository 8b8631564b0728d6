package demo

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/MrEthical07/goJWT/jwt"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/redis/go-redis/v9"
)

// LoadKeys resolves the configured key source and parses its material. The
// returned cleanup releases any client the source opened.
func LoadKeys(ctx context.Context, cfg *Config) (*keys.KeyPair, func(), error) {
	src, cleanup, err := keySource(cfg)
	if err != nil {
		return nil, nil, err
	}
	kp, err := keys.Load(ctx, src)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load %s keys: %w", cfg.Keys.Source, err)
	}
	return kp, cleanup, nil
}

func keySource(cfg *Config) (keys.Source, func(), error) {
	noop := func() {}

	switch cfg.Keys.Source {
	case KeySourceFile:
		return keys.FileSource{
			PrivateKeyPath: cfg.Keys.PrivateKeyPath,
			PublicKeyPath:  cfg.Keys.PublicKeyPath,
			KeyID:          cfg.Keys.KeyID,
		}, noop, nil
	case KeySourceEnv:
		return keys.EnvSource{}, noop, nil
	case KeySourceRedis:
		rdb := NewRedisClient(cfg.Redis)
		return keys.NewRedisSource(rdb, cfg.Keys.RedisPrefix, cfg.Keys.KeyID), func() { _ = rdb.Close() }, nil
	case KeySourceEphemeral:
		m, err := ephemeralMaterial(cfg.Keys.KeyID)
		if err != nil {
			return nil, nil, err
		}
		return keys.StaticSource{Material: m}, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown key source %q", cfg.Keys.Source)
	}
}

// NewRedisClient opens a client for the configured Redis instance.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ephemeralMaterial generates a throwaway key pair for local runs. Tokens it
// signs do not survive a restart.
func ephemeralMaterial(kid string) (keys.Material, error) {
	priv, err := rsa.GenerateKey(rand.Reader, jwt.MinRSAKeyBits)
	if err != nil {
		return keys.Material{}, fmt.Errorf("generate ephemeral key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return keys.Material{}, fmt.Errorf("marshal ephemeral public key: %w", err)
	}
	return keys.Material{
		PrivateKeyPEM: pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}),
		PublicKeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}),
		KeyID:         kid,
	}, nil
}
