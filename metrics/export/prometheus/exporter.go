package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goLogin "github.com/MrEthical07/goLogin"
	"github.com/MrEthical07/goLogin/metrics/export/internaldefs"
)

// ContentType is the Prometheus text exposition format served by Handler.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

type metricsSource interface {
	MetricsSnapshot() goLogin.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders engine metrics in Prometheus text format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates an exporter that reads from engine.
func NewPrometheusExporter(engine *goLogin.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates an exporter over any snapshot source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves Render on every request.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ContentType)
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics. It returns "" when the engine records
// nothing, so a disabled engine exposes an empty page.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snap := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 && dropped == 0 {
		return ""
	}

	w := &textWriter{}
	w.b.Grow(4096)

	for _, fam := range internaldefs.CounterFamilies {
		w.header(fam.Name, fam.Help, "counter")
		for _, s := range fam.Series {
			w.sample(fam.Name, fam.LabelKey, s.LabelValue, strconv.FormatUint(snap.Counters[s.ID], 10))
		}
	}

	for _, def := range internaldefs.HistogramDefs {
		h := internaldefs.HistogramFromSnapshot(snap, def)
		w.header(def.Name, def.Help, "histogram")
		for i, le := range internaldefs.HistogramBounds {
			w.sample(def.Name+"_bucket", "le", le, strconv.FormatUint(h.Cumulative[i], 10))
		}
		w.sample(def.Name+"_sum", "", "", strconv.FormatFloat(h.Sum, 'g', -1, 64))
		w.sample(def.Name+"_count", "", "", strconv.FormatUint(h.Count, 10))
	}

	w.header(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, "counter")
	w.sample(internaldefs.AuditDroppedName, "", "", strconv.FormatUint(dropped, 10))

	return w.b.String()
}

type textWriter struct {
	b strings.Builder
}

func (w *textWriter) header(name, help, kind string) {
	w.b.WriteString("# HELP ")
	w.b.WriteString(name)
	w.b.WriteByte(' ')
	w.b.WriteString(escapeHelp(help))
	w.b.WriteString("\n# TYPE ")
	w.b.WriteString(name)
	w.b.WriteByte(' ')
	w.b.WriteString(kind)
	w.b.WriteByte('\n')
}

func (w *textWriter) sample(name, labelKey, labelValue, value string) {
	w.b.WriteString(name)
	if labelKey != "" {
		w.b.WriteByte('{')
		w.b.WriteString(labelKey)
		w.b.WriteString(`="`)
		w.b.WriteString(escapeLabel(labelValue))
		w.b.WriteString(`"}`)
	}
	w.b.WriteByte(' ')
	w.b.WriteString(value)
	w.b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, `\`, `\\`)
	return strings.ReplaceAll(help, "\n", `\n`)
}

func escapeLabel(v string) string {
	v = escapeHelp(v)
	return strings.ReplaceAll(v, `"`, `\"`)
}
