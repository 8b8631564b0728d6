package keys

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads PEM blobs stored under "<prefix>:<kid>:private" and
// "<prefix>:<kid>:public". A missing private key yields a verify-only pair.
type RedisSource struct {
	redis  redis.UniversalClient
	prefix string
	keyID  string
}

// NewRedisSource returns a source for key id kid. An empty prefix defaults
// to "jwtkey".
func NewRedisSource(rdb redis.UniversalClient, prefix, kid string) *RedisSource {
	if prefix == "" {
		prefix = "jwtkey"
	}
	return &RedisSource{
		redis:  rdb,
		prefix: prefix,
		keyID:  kid,
	}
}

// PrivateKey returns the redis key holding the private PEM.
func (s *RedisSource) PrivateKey() string {
	return s.prefix + ":" + s.keyID + ":private"
}

// PublicKey returns the redis key holding the public PEM.
func (s *RedisSource) PublicKey() string {
	return s.prefix + ":" + s.keyID + ":public"
}

func (s *RedisSource) Load(ctx context.Context) (Material, error) {
	if s == nil || s.redis == nil {
		return Material{}, fmt.Errorf("%w: redis client is nil", ErrSourceUnavailable)
	}

	pipe := s.redis.Pipeline()
	privCmd := pipe.Get(ctx, s.PrivateKey())
	pubCmd := pipe.Get(ctx, s.PublicKey())
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Material{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	m := Material{KeyID: s.keyID}
	var err error
	if m.PrivateKeyPEM, err = optionalBytes(privCmd); err != nil {
		return Material{}, err
	}
	if m.PublicKeyPEM, err = optionalBytes(pubCmd); err != nil {
		return Material{}, err
	}
	if len(m.PrivateKeyPEM) == 0 && len(m.PublicKeyPEM) == 0 {
		return Material{}, fmt.Errorf("%w: kid %q", ErrKeyNotFound, s.keyID)
	}
	return m, nil
}

func optionalBytes(cmd *redis.StringCmd) ([]byte, error) {
	b, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return b, nil
}
