// Package otel publishes goLogin metrics through OpenTelemetry observable
// instruments.
//
// Each counter family becomes one Int64ObservableCounter whose series differ by
// attribute. The login latency histogram is exposed as a bucket gauge keyed by
// the "le" attribute plus count and sum gauges. A single callback reads the
// engine snapshot on every collection cycle.
//
// Callers own the MeterProvider; the exporter never mutates engine state.
package otel
