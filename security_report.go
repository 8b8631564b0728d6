package goJWT

import (
	"time"

	"github.com/MrEthical07/goJWT/jwt"
)

// SecurityReport summarizes the effective security posture of an Engine.
// It never contains key material.
type SecurityReport struct {
	SigningAlgorithm string
	KeyID            string
	KeyBits          int
	CanSign          bool
	CanVerify        bool
	IssueTTL         time.Duration
	NotBeforeSkew    time.Duration
	Policy           PolicyReport
	AuditEnabled     bool
	MetricsEnabled   bool
	Warnings         []string
}

// PolicyReport mirrors the claim policy applied by Validate.
type PolicyReport struct {
	IssuerChecked   bool
	AudienceChecked bool
	RequireExpiry   bool
	Leeway          time.Duration
	MaxFutureIAT    time.Duration
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	bits := 0
	if e.verifyKey != nil && e.verifyKey.N != nil {
		bits = e.verifyKey.N.BitLen()
	}

	return SecurityReport{
		SigningAlgorithm: jwt.AlgRS256,
		KeyID:            e.header.KeyID,
		KeyBits:          bits,
		CanSign:          e.CanSign(),
		CanVerify:        e.CanVerify(),
		IssueTTL:         e.config.Issue.TTL,
		NotBeforeSkew:    e.config.Issue.NotBeforeSkew,
		Policy: PolicyReport{
			IssuerChecked:   e.policy.Issuer != "",
			AudienceChecked: e.policy.Audience != "",
			RequireExpiry:   e.policy.RequireExpiry,
			Leeway:          e.policy.Leeway,
			MaxFutureIAT:    e.policy.MaxFutureIAT,
		},
		AuditEnabled:   e.audit != nil,
		MetricsEnabled: e.metrics.Enabled(),
		Warnings:       e.config.Lint().Codes(),
	}
}
