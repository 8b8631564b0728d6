// Package otel binds goJWT engine metrics to OpenTelemetry instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine counter
// and one Int64ObservableGauge per histogram bucket. A single callback reads
// [goJWT.Engine.MetricsSnapshot] on each collection cycle.
//
// Callers own the MeterProvider and supply the Meter.
package otel
