package tree

import (
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xtree/lib/xlog"
)

type treeOptions struct {
	name          string
	logger        xlog.XLogger
	meterProvider metric.MeterProvider
}

type Option func(*treeOptions)

// WithName tags the tree's log entries and metric scope.
func WithName(name string) Option {
	return func(opts *treeOptions) {
		if name = strings.TrimSpace(name); len(name) > 0 {
			opts.name = name
		}
	}
}

func WithLogger(logger xlog.XLogger) Option {
	return func(opts *treeOptions) {
		opts.logger = logger
	}
}

// WithMeterProvider replaces the otel global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(opts *treeOptions) {
		opts.meterProvider = mp
	}
}

func applyOptions(kind string, opts []Option) *treeOptions {
	cfg := &treeOptions{
		name: kind,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = xlog.NewNopXLogger()
	}
	cfg.logger = cfg.logger.Named(cfg.name)
	return cfg
}
