package internaldefs

import (
	goLogin "github.com/MrEthical07/goLogin"
)

// Series is one labeled member of a counter family.
type Series struct {
	ID         goLogin.MetricID
	LabelValue string
}

// CounterFamily groups engine counters that export as one metric name with a
// single distinguishing label. A family without LabelKey has exactly one
// unlabeled series.
type CounterFamily struct {
	Name     string
	Help     string
	LabelKey string
	Series   []Series
}

// HistogramDef binds a histogram ID to its exported name.
type HistogramDef struct {
	ID   goLogin.MetricID
	Name string
	Help string
}

// CounterFamilies lists exported counters in rendering order.
var CounterFamilies = []CounterFamily{
	{
		Name:     "gologin_logins_total",
		Help:     "Completed login invocations by result.",
		LabelKey: "result",
		Series: []Series{
			{ID: goLogin.MetricLoginSuccess, LabelValue: "success"},
			{ID: goLogin.MetricLoginFailure, LabelValue: "failure"},
		},
	},
	{
		Name:     "gologin_login_rejections_total",
		Help:     "Failed logins by the stage that rejected them.",
		LabelKey: "reason",
		Series: []Series{
			{ID: goLogin.MetricLoginValidationFailed, LabelValue: "validation"},
			{ID: goLogin.MetricLoginUserNotFound, LabelValue: "user_not_found"},
			{ID: goLogin.MetricLoginUnverified, LabelValue: "unverified"},
			{ID: goLogin.MetricLoginInvalidPassword, LabelValue: "invalid_password"},
			{ID: goLogin.MetricLoginInternalError, LabelValue: "internal"},
		},
	},
	{
		Name:   "gologin_sessions_created_total",
		Help:   "Session cache entries written.",
		Series: []Series{{ID: goLogin.MetricSessionCreated}},
	},
	{
		Name:     "gologin_session_validations_total",
		Help:     "Session token validations by result.",
		LabelKey: "result",
		Series: []Series{
			{ID: goLogin.MetricSessionValidateSuccess, LabelValue: "success"},
			{ID: goLogin.MetricSessionValidateFailure, LabelValue: "failure"},
		},
	},
}

// AuditDroppedName is the counter for events the audit dispatcher discarded.
const AuditDroppedName = "gologin_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."

// HistogramDefs lists exported latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: goLogin.MetricLoginLatency, Name: "gologin_login_duration_seconds", Help: "End-to-end login latency."},
}

// HistogramBounds are the bucket upper bounds, in seconds, as rendered in the
// Prometheus le label.
var HistogramBounds = [8]string{"0.005", "0.01", "0.025", "0.05", "0.1", "0.25", "0.5", "+Inf"}

// HistogramBoundSuffix renders HistogramBounds as instrument-name suffixes.
var HistogramBoundSuffix = [8]string{"0_005", "0_01", "0_025", "0_05", "0_1", "0_25", "0_5", "inf"}

// Histogram is a cumulative view of one engine histogram.
type Histogram struct {
	Cumulative [8]uint64
	Count      uint64
	Sum        float64 // seconds
}

// HistogramFromSnapshot builds the cumulative view of def from snap. Missing
// buckets count as zero.
func HistogramFromSnapshot(snap goLogin.MetricsSnapshot, def HistogramDef) Histogram {
	var h Histogram
	var running uint64
	raw := snap.Histograms[def.ID]
	for i := range h.Cumulative {
		if i < len(raw) {
			running += raw[i]
		}
		h.Cumulative[i] = running
	}
	h.Count = running
	h.Sum = snap.HistogramSums[def.ID].Seconds()
	return h
}
