// Package prometheus renders goLogin metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] wraps an [goLogin.Engine]; mount [PrometheusExporter.Handler]
// on any router. Nothing is registered in a global registry.
package prometheus
