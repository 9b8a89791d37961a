package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"time"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xtree/lib/infra"
)

// NewConsoleMeterProvider serves for test/dev environment. Every interval
// the collected tree metrics are written by the stdout exporter.
// The caller owns the provider and must Shutdown it to flush.
func NewConsoleMeterProvider(interval, timeout time.Duration, opts ...stdoutmetric.Option) (*metric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] unable to create stdout exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	return mp, nil
}

// NewPrometheusMeterProvider serves for the product environment, the
// stats metrics are fetched by HTTP from the prometheus registerer.
func NewPrometheusMeterProvider(opts ...prometheus.Option) (*metric.MeterProvider, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] unable to create prometheus exporter")
	}
	return metric.NewMeterProvider(metric.WithReader(exporter)), nil
}
