package goJWT

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goJWT/jwt"
)

// Config holds everything an Engine needs. Build an Engine from it with
// [Builder]; after Build the config is copied and never mutated.
type Config struct {
	Keys    KeyConfig
	Issue   IssueConfig
	Policy  PolicyConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
KEY CONFIG
====================================
*/

// KeyConfig carries PEM encoded RSA keys. A config with only PublicKeyPEM
// builds a verify-only Engine.
type KeyConfig struct {
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
	// KeyID, when set, is written to the kid header of issued tokens.
	KeyID string
}

/*
====================================
ISSUE CONFIG
====================================
*/

// IssueConfig drives Engine.Issue.
type IssueConfig struct {
	Issuer   string
	Audience []string
	TTL      time.Duration
	// NotBeforeSkew backdates nbf to tolerate verifier clocks running behind.
	NotBeforeSkew time.Duration
}

/*
====================================
POLICY CONFIG
====================================
*/

// PolicyConfig is applied by Engine.Validate after a successful signature check.
type PolicyConfig struct {
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireExpiry bool
	MaxFutureIAT  time.Duration
}

func (p PolicyConfig) policy() jwt.Policy {
	return jwt.Policy{
		Issuer:        p.Issuer,
		Audience:      p.Audience,
		Leeway:        p.Leeway,
		RequireExpiry: p.RequireExpiry,
		MaxFutureIAT:  p.MaxFutureIAT,
	}
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a config with conservative issuance and policy
// settings. Keys must still be supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Issue: IssueConfig{
			TTL:           15 * time.Minute,
			NotBeforeSkew: 0,
		},
		Policy: PolicyConfig{
			Leeway:        30 * time.Second,
			RequireExpiry: true,
			MaxFutureIAT:  10 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Keys.PrivateKeyPEM = cloneBytes(cfg.Keys.PrivateKeyPEM)
	out.Keys.PublicKeyPEM = cloneBytes(cfg.Keys.PublicKeyPEM)
	if cfg.Issue.Audience != nil {
		out.Issue.Audience = append([]string(nil), cfg.Issue.Audience...)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the config for values the Engine cannot work with. Key
// parsing happens in Build; Validate only checks presence.
func (c *Config) Validate() error {
	if len(c.Keys.PrivateKeyPEM) == 0 && len(c.Keys.PublicKeyPEM) == 0 {
		return fmt.Errorf("%w: at least one of PrivateKeyPEM or PublicKeyPEM is required", ErrInvalidConfig)
	}
	return c.validateSettings()
}

func (c *Config) validateSettings() error {
	if strings.TrimSpace(c.Keys.KeyID) != c.Keys.KeyID {
		return fmt.Errorf("%w: KeyID must not have surrounding whitespace", ErrInvalidConfig)
	}

	if c.Issue.TTL <= 0 {
		return fmt.Errorf("%w: Issue TTL must be > 0", ErrInvalidConfig)
	}
	if c.Issue.NotBeforeSkew < 0 || c.Issue.NotBeforeSkew > 5*time.Minute {
		return fmt.Errorf("%w: Issue NotBeforeSkew must be within [0, 5m]", ErrInvalidConfig)
	}
	for _, aud := range c.Issue.Audience {
		if strings.TrimSpace(aud) == "" {
			return fmt.Errorf("%w: Issue Audience contains an empty value", ErrInvalidConfig)
		}
	}

	if c.Policy.Leeway < 0 || c.Policy.Leeway > 2*time.Minute {
		return fmt.Errorf("%w: Policy Leeway must be within [0, 2m]", ErrInvalidConfig)
	}
	if c.Policy.MaxFutureIAT < 0 || c.Policy.MaxFutureIAT > 24*time.Hour {
		return fmt.Errorf("%w: Policy MaxFutureIAT must be within [0, 24h]", ErrInvalidConfig)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit BufferSize must be > 0 when audit is enabled", ErrInvalidConfig)
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return fmt.Errorf("%w: Metrics EnableLatencyHistograms requires Metrics Enabled", ErrInvalidConfig)
	}
	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a config value that is legal but likely unintended.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of Config.Lint.
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports legal but risky settings. It never fails; use Validate for that.
func (c Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code, msg string) {
		ws = append(ws, LintWarning{Code: code, Message: msg})
	}

	if c.Issue.TTL > time.Hour {
		add("issue_ttl_long", "issued tokens live longer than one hour")
	}
	if c.Policy.Leeway > time.Minute {
		add("leeway_large", "policy leeway exceeds one minute")
	}
	if !c.Policy.RequireExpiry {
		add("expiry_optional", "tokens without exp are accepted by Validate")
	}
	if c.Policy.Issuer == "" {
		add("issuer_unchecked", "Validate does not check iss")
	}
	if c.Policy.Audience == "" {
		add("audience_unchecked", "Validate does not check aud")
	}
	if c.Issue.Issuer != "" && c.Policy.Issuer != "" && c.Issue.Issuer != c.Policy.Issuer {
		add("issuer_mismatch", "issued tokens would fail this engine's own issuer policy")
	}
	if c.Policy.Audience != "" && len(c.Issue.Audience) > 0 && !containsString(c.Issue.Audience, c.Policy.Audience) {
		add("audience_mismatch", "issued tokens would fail this engine's own audience policy")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", "no audit events are emitted")
	}
	if len(c.Keys.PrivateKeyPEM) == 0 && len(c.Keys.PublicKeyPEM) > 0 {
		add("verify_only", "engine can verify tokens but cannot issue them")
	}
	return ws
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
