package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/xlog"
)

type ExporterKind uint8

const (
	ConsoleExporter ExporterKind = iota
	PrometheusExporter
)

func (k ExporterKind) String() string {
	switch k {
	case ConsoleExporter:
		return "console"
	case PrometheusExporter:
		return "prometheus"
	default:
	}
	return "exporter(unknown)"
}

type Config struct {
	Name     string
	Exporter ExporterKind
	// Console exporter only.
	Interval      time.Duration
	Timeout       time.Duration
	StdoutOptions []stdoutmetric.Option
	// Prometheus exporter only.
	PrometheusOptions []prometheus.Option
	RuntimeStats      bool
}

type providerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	Logger    xlog.XLogger `optional:"true"`
}

type providerResult struct {
	fx.Out

	SDK      *sdkmetric.MeterProvider
	Provider metric.MeterProvider
}

func newMeterProvider(p providerParams) (providerResult, error) {
	logger := p.Logger
	if logger == nil {
		logger = xlog.NewNopXLogger()
	}
	logger = logger.Named("observability")

	var (
		mp  *sdkmetric.MeterProvider
		err error
	)
	switch p.Config.Exporter {
	case PrometheusExporter:
		mp, err = NewPrometheusMeterProvider(p.Config.PrometheusOptions...)
	default:
		interval, timeout := p.Config.Interval, p.Config.Timeout
		if interval <= 0 {
			interval = time.Minute
		}
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		mp, err = NewConsoleMeterProvider(interval, timeout, p.Config.StdoutOptions...)
	}
	if err != nil {
		logger.ErrorStack(err, "meter provider unavailable",
			zap.Stringer("exporter", p.Config.Exporter),
		)
		return providerResult{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("meter provider started", zap.Stringer("exporter", p.Config.Exporter))
			if !p.Config.RuntimeStats {
				return nil
			}
			return StartRuntimeStats(mp, p.Config.Name)
		},
		OnStop: func(ctx context.Context) error {
			if err := mp.Shutdown(ctx); err != nil {
				logger.ErrorStack(err, "meter provider shutdown failed")
				return err
			}
			return nil
		},
	})
	return providerResult{SDK: mp, Provider: mp}, nil
}

// Module provides the *sdkmetric.MeterProvider (and its metric.MeterProvider
// view for tree.WithMeterProvider) and shuts it down with the application.
func Module(cfg Config) fx.Option {
	return fx.Module("observability",
		fx.Supply(cfg),
		fx.Provide(newMeterProvider),
	)
}
