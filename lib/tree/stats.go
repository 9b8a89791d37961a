package tree

import (
	"context"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationScope   = "github.com/benz9527/xtree/lib/tree"
	instrumentationVersion = "v0.1.0"

	metricInserts   = "xtree.tree.inserts"
	metricRemoves   = "xtree.tree.removes"
	metricRotations = "xtree.tree.rotations"
	metricRecolors  = "xtree.tree.recolors"

	attrTreeName  = attribute.Key("tree.name")
	attrDirection = attribute.Key("direction")
)

type treeStats struct {
	inserts   metric.Int64Counter
	removes   metric.Int64Counter
	rotations metric.Int64Counter
	recolors  metric.Int64Counter

	tree     metric.MeasurementOption
	leftRot  metric.MeasurementOption
	rightRot metric.MeasurementOption
}

func newTreeStats(opts *treeOptions) *treeStats {
	mp := opts.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(
		instrumentationScope,
		metric.WithInstrumentationVersion(instrumentationVersion),
	)
	name := attrTreeName.String(opts.name)
	return &treeStats{
		inserts: lo.Must[metric.Int64Counter](meter.Int64Counter(
			metricInserts,
			metric.WithDescription(`Keys added to the tree.`),
			metric.WithUnit("{key}"),
		)),
		removes: lo.Must[metric.Int64Counter](meter.Int64Counter(
			metricRemoves,
			metric.WithDescription(`Keys removed from the tree.`),
			metric.WithUnit("{key}"),
		)),
		rotations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			metricRotations,
			metric.WithDescription(`Single rotations done while rebalancing.`),
			metric.WithUnit("{rotation}"),
		)),
		recolors: lo.Must[metric.Int64Counter](meter.Int64Counter(
			metricRecolors,
			metric.WithDescription(`Red-black fixup steps resolved by recoloring only.`),
			metric.WithUnit("{recolor}"),
		)),
		tree:     metric.WithAttributes(name),
		leftRot:  metric.WithAttributes(name, attrDirection.String(Left.String())),
		rightRot: metric.WithAttributes(name, attrDirection.String(Right.String())),
	}
}

func (stats *treeStats) inserted() {
	stats.inserts.Add(context.Background(), 1, stats.tree)
}

func (stats *treeStats) removed() {
	stats.removes.Add(context.Background(), 1, stats.tree)
}

func (stats *treeStats) rotated(dir Direction) {
	switch dir {
	case Left:
		stats.rotations.Add(context.Background(), 1, stats.leftRot)
	case Right:
		stats.rotations.Add(context.Background(), 1, stats.rightRot)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[tree] rotation without direction")
	}
}

func (stats *treeStats) recolored() {
	stats.recolors.Add(context.Background(), 1, stats.tree)
}
