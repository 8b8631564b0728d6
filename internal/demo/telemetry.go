package demo

import (
	"context"
	"fmt"

	goJWT "github.com/MrEthical07/goJWT"
	jwtotel "github.com/MrEthical07/goJWT/metrics/export/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// StartMetricsExport pushes engine metrics to an OTLP collector. It returns a
// no-op shutdown when no endpoint is configured.
func StartMetricsExport(ctx context.Context, cfg OTelConfig, engine *goJWT.Engine) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}

	mp := newMeterProvider(res, sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.Interval)))
	bridge, err := jwtotel.NewOTelExporter(mp.Meter("github.com/MrEthical07/goJWT"), engine)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		_ = bridge.Close()
		return mp.Shutdown(ctx)
	}, nil
}

func newMeterProvider(res *resource.Resource, reader sdkmetric.Reader) *sdkmetric.MeterProvider {
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
}
