package keys

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Default environment variable names read by EnvSource.
const (
	DefaultPrivateKeyVar = "JWT_PRIVATE_KEY"
	DefaultPublicKeyVar  = "JWT_PUBLIC_KEY"
	DefaultKeyIDVar      = "JWT_KEY_ID"
)

// EnvSource reads PEM text from environment variables. Literal "\n"
// sequences are expanded so single-line values work in .env files.
type EnvSource struct {
	PrivateKeyVar string
	PublicKeyVar  string
	KeyIDVar      string

	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

func (s EnvSource) Load(ctx context.Context) (Material, error) {
	if err := ctx.Err(); err != nil {
		return Material{}, err
	}
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	privVar := orDefault(s.PrivateKeyVar, DefaultPrivateKeyVar)
	pubVar := orDefault(s.PublicKeyVar, DefaultPublicKeyVar)
	kidVar := orDefault(s.KeyIDVar, DefaultKeyIDVar)

	m := Material{}
	if v, ok := lookup(privVar); ok && strings.TrimSpace(v) != "" {
		m.PrivateKeyPEM = []byte(expandNewlines(v))
	}
	if v, ok := lookup(pubVar); ok && strings.TrimSpace(v) != "" {
		m.PublicKeyPEM = []byte(expandNewlines(v))
	}
	if v, ok := lookup(kidVar); ok {
		m.KeyID = strings.TrimSpace(v)
	}
	if len(m.PrivateKeyPEM) == 0 && len(m.PublicKeyPEM) == 0 {
		return Material{}, fmt.Errorf("%w: neither %s nor %s is set", ErrKeyNotFound, privVar, pubVar)
	}
	return m, nil
}

func expandNewlines(v string) string {
	return strings.ReplaceAll(v, `\n`, "\n")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
