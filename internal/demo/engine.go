package demo

import (
	"log/slog"
	"os"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/keys"
)

// NewEngine builds the token engine for the demo routes. The policy accepts
// the fixed demo claim set served on GET /jwt.
func NewEngine(cfg *Config, kp *keys.KeyPair, logger *slog.Logger) (*goJWT.Engine, error) {
	demo := goJWT.DemoClaims()

	c := goJWT.DefaultConfig()
	c.Issue.Issuer = demo.Issuer
	c.Issue.Audience = demo.Audience
	c.Policy.Issuer = demo.Issuer
	c.Policy.Audience = demo.Audience[0]
	c.Audit.Enabled = cfg.AuditEnabled
	c.Metrics.Enabled = cfg.MetricsEnabled
	c.Metrics.EnableLatencyHistograms = cfg.MetricsEnabled

	b := goJWT.New().
		WithConfig(c).
		WithKeyPair(kp).
		WithLogger(logger)
	if cfg.AuditEnabled {
		b = b.WithAuditSink(goJWT.NewJSONWriterSink(os.Stdout))
	}
	return b.Build()
}
