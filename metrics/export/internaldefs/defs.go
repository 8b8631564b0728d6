package internaldefs

import (
	goJWT "github.com/MrEthical07/goJWT"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   goJWT.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram for export.
type HistogramDef struct {
	ID   goJWT.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for goJWT.Engine.AuditDropped.
const AuditDroppedName = "gojwt_audit_dropped_total"

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goJWT.MetricSignSuccess, Name: "gojwt_sign_success_total", Help: "Tokens signed."},
	{ID: goJWT.MetricSignFailure, Name: "gojwt_sign_failure_total", Help: "Signing attempts that failed."},
	{ID: goJWT.MetricVerifySuccess, Name: "gojwt_verify_success_total", Help: "Tokens whose RS256 signature verified."},
	{ID: goJWT.MetricVerifyRejected, Name: "gojwt_verify_rejected_total", Help: "Well-formed tokens whose signature did not verify."},
	{ID: goJWT.MetricVerifyMalformed, Name: "gojwt_verify_malformed_total", Help: "Tokens rejected for structure or key errors."},
	{ID: goJWT.MetricDecodeFailure, Name: "gojwt_decode_failure_total", Help: "Claim decode failures."},
	{ID: goJWT.MetricPolicyRejected, Name: "gojwt_policy_rejected_total", Help: "Verified tokens rejected by claim policy."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: goJWT.MetricSignLatency, Name: "gojwt_sign_latency_seconds", Help: "RS256 signing latency."},
	{ID: goJWT.MetricVerifyLatency, Name: "gojwt_verify_latency_seconds", Help: "RS256 verification latency."},
}

// HistogramBounds are the upper bounds of the engine's eight latency buckets.
var HistogramBounds = []string{
	"0.001",
	"0.002",
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds in a form legal inside instrument names.
var HistogramBoundSuffix = []string{
	"0_001",
	"0_002",
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero filling short input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the running totals that
// Prometheus le buckets expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
