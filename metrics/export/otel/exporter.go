package otel

import (
	"context"
	"errors"
	"fmt"

	goLogin "github.com/MrEthical07/goLogin"
	"github.com/MrEthical07/goLogin/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Constructor errors.
var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goLogin.MetricsSnapshot
	AuditDropped() uint64
}

type observedSeries struct {
	id   goLogin.MetricID
	opts []metric.ObserveOption
}

type observedFamily struct {
	instrument metric.Int64ObservableCounter
	series     []observedSeries
}

type observedHistogram struct {
	def     internaldefs.HistogramDef
	buckets metric.Int64ObservableGauge
	le      [8]metric.ObserveOption
	count   metric.Int64ObservableGauge
	sum     metric.Float64ObservableGauge
}

// OTelExporter publishes engine metrics through observable instruments. Each
// counter family is one instrument; family members differ by attribute.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	families     []observedFamily
	histograms   []observedHistogram
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers instruments on meter that read from engine.
func NewOTelExporter(meter metric.Meter, engine *goLogin.Engine) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource registers instruments over any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var observables []metric.Observable

	for _, fam := range internaldefs.CounterFamilies {
		ins, err := meter.Int64ObservableCounter(fam.Name, metric.WithDescription(fam.Help))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", fam.Name, err)
		}
		of := observedFamily{instrument: ins}
		for _, s := range fam.Series {
			ser := observedSeries{id: s.ID}
			if fam.LabelKey != "" {
				ser.opts = []metric.ObserveOption{metric.WithAttributes(attribute.String(fam.LabelKey, s.LabelValue))}
			}
			of.series = append(of.series, ser)
		}
		e.families = append(e.families, of)
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h := observedHistogram{def: def}
		var err error
		if h.buckets, err = meter.Int64ObservableGauge(def.Name+"_bucket",
			metric.WithDescription("Cumulative bucket counts of "+def.Name+".")); err != nil {
			return nil, fmt.Errorf("create bucket gauge %s: %w", def.Name, err)
		}
		if h.count, err = meter.Int64ObservableGauge(def.Name+"_count",
			metric.WithDescription("Sample count of "+def.Name+".")); err != nil {
			return nil, fmt.Errorf("create count gauge %s: %w", def.Name, err)
		}
		if h.sum, err = meter.Float64ObservableGauge(def.Name+"_sum",
			metric.WithDescription("Sum in seconds of "+def.Name+"."), metric.WithUnit("s")); err != nil {
			return nil, fmt.Errorf("create sum gauge %s: %w", def.Name, err)
		}
		for i, le := range internaldefs.HistogramBounds {
			h.le[i] = metric.WithAttributes(attribute.String("le", le))
		}
		e.histograms = append(e.histograms, h)
		observables = append(observables, h.buckets, h.count, h.sum)
	}

	auditDropped, err := meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp))
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	e.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()

	for _, fam := range e.families {
		for _, s := range fam.series {
			o.ObserveInt64(fam.instrument, int64(snap.Counters[s.id]), s.opts...)
		}
	}

	for _, h := range e.histograms {
		view := internaldefs.HistogramFromSnapshot(snap, h.def)
		for i, v := range view.Cumulative {
			o.ObserveInt64(h.buckets, int64(v), h.le[i])
		}
		o.ObserveInt64(h.count, int64(view.Count))
		o.ObserveFloat64(h.sum, view.Sum)
	}

	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
