// Package prometheus renders goJWT engine metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [goJWT.Engine] and exposes an
// [http.Handler]. Counters are named gojwt_*_total; the two histograms are
// gojwt_sign_latency_seconds and gojwt_verify_latency_seconds. Nothing is
// registered globally; callers mount the Handler.
package prometheus
