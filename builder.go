package goJWT

import (
	"crypto/rsa"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goJWT/jwt"
	"github.com/MrEthical07/goJWT/keys"
)

// Builder assembles an Engine. A Builder is single use.
type Builder struct {
	config    Config
	auditSink AuditSink
	logger    *slog.Logger
	clock     func() time.Time

	signKey   *rsa.PrivateKey
	verifyKey *rsa.PublicKey

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithKeysPEM sets PEM encoded key material. Either argument may be nil.
func (b *Builder) WithKeysPEM(privateKeyPEM, publicKeyPEM []byte) *Builder {
	b.config.Keys.PrivateKeyPEM = cloneBytes(privateKeyPEM)
	b.config.Keys.PublicKeyPEM = cloneBytes(publicKeyPEM)
	return b
}

// WithKeys sets already parsed keys, taking precedence over PEM config.
// Either argument may be nil. The public key defaults to the private key's.
func (b *Builder) WithKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey) *Builder {
	b.signKey = priv
	b.verifyKey = pub
	return b
}

// WithKeyPair uses keys loaded through the keys package, including its key id
// when one is set.
func (b *Builder) WithKeyPair(kp *keys.KeyPair) *Builder {
	if kp == nil {
		return b
	}
	b.signKey = kp.Private
	b.verifyKey = kp.Public
	if kp.KeyID != "" {
		b.config.Keys.KeyID = kp.KeyID
	}
	return b
}

// WithKeyID sets the kid header written on issued tokens.
func (b *Builder) WithKeyID(kid string) *Builder {
	b.config.Keys.KeyID = kid
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Without it the Engine logs nothing.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides time.Now for issuance and policy checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build parses keys, validates the config and starts the audit dispatcher.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)

	signKey, verifyKey := b.signKey, b.verifyKey
	if signKey == nil && len(cfg.Keys.PrivateKeyPEM) > 0 {
		k, err := jwt.ParsePrivateKeyPEM(cfg.Keys.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("private key: %w", err)
		}
		signKey = k
	}
	if verifyKey == nil && len(cfg.Keys.PublicKeyPEM) > 0 {
		k, err := jwt.ParsePublicKeyPEM(cfg.Keys.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("public key: %w", err)
		}
		verifyKey = k
	}
	if verifyKey == nil && signKey != nil {
		verifyKey = &signKey.PublicKey
	}
	if signKey == nil && verifyKey == nil {
		return nil, fmt.Errorf("%w: no signing or verify key configured", ErrInvalidConfig)
	}
	// Keys passed through WithKeys satisfy the presence check, so only the
	// remaining settings are validated here.
	if err := cfg.validateSettings(); err != nil {
		return nil, err
	}
	if signKey != nil && verifyKey != nil && !signKey.PublicKey.Equal(verifyKey) {
		return nil, fmt.Errorf("%w: public key does not match private key", ErrInvalidConfig)
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		config:    cfg,
		signKey:   signKey,
		verifyKey: verifyKey,
		header:    jwt.NewHeader().WithKeyID(cfg.Keys.KeyID),
		policy:    cfg.Policy.policy(),
		metrics:   NewMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		logger:    logger,
		now:       clock,
	}

	b.built = true
	return e, nil
}
