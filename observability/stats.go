package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

const (
	metricTreeSize   = "xtree.tree.size"
	metricTreeHeight = "xtree.tree.height"
	metricGoroutines = "xtree.app.goroutines"

	attrTreeName = attribute.Key("tree.name")
)

func meterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xtree/app")
	builder.WriteString("/")
	if name = strings.TrimSpace(name); len(name) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// StartRuntimeStats publishes the go runtime metrics of the process
// hosting the trees.
func StartRuntimeStats(mp metric.MeterProvider, name string) error {
	lo.Must[metric.Int64ObservableUpDownCounter](mp.Meter(
		meterName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	).Int64ObservableUpDownCounter(
		metricGoroutines,
		metric.WithDescription(`The application goroutines' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.NumGoroutine()))
			return nil
		}),
	))
	if err := otelruntime.Start(
		otelruntime.WithMeterProvider(mp),
		otelruntime.WithMinimumReadMemStatsInterval(time.Second),
	); err != nil {
		return infra.WrapErrorStackWithMessage(err, "[observability] unable to start runtime stats")
	}
	return nil
}

// ObserveTree reports the node count and the height of t on every
// collection. The trees are not safe for concurrent use, so the
// callback takes locker (when not nil) around the reads; the owner of t
// must hold the same locker while mutating it.
func ObserveTree[K infra.Integer](
	mp metric.MeterProvider,
	name string,
	t tree.SearchTree[K],
	locker sync.Locker,
) (metric.Registration, error) {
	meter := mp.Meter(meterName(name))
	size := lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		metricTreeSize,
		metric.WithDescription(`Nodes held by the tree.`),
		metric.WithUnit("{node}"),
	))
	height := lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
		metricTreeHeight,
		metric.WithDescription(`Nodes on the longest root to leaf path.`),
		metric.WithUnit("{node}"),
	))
	attrs := metric.WithAttributes(attrTreeName.String(name))

	reg, err := meter.RegisterCallback(func(ctx context.Context, ob metric.Observer) error {
		if locker != nil {
			locker.Lock()
			defer locker.Unlock()
		}
		ob.ObserveInt64(size, t.Len(), attrs)
		ob.ObserveInt64(height, int64(t.Height(t.Root())), attrs)
		return nil
	}, size, height)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] unable to observe tree "+name)
	}
	return reg, nil
}
