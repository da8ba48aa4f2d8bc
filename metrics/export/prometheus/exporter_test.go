package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goLogin "github.com/MrEthical07/goLogin"
)

type fakeSource struct {
	snapshot goLogin.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goLogin.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                     { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{snapshot: goLogin.MetricsSnapshot{}})
	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}

	var nilExp *PrometheusExporter
	if got := nilExp.Render(); got != "" {
		t.Fatalf("expected empty output for nil exporter, got %q", got)
	}
}

func TestRenderLabeledFamiliesAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goLogin.MetricsSnapshot{
			Counters: map[goLogin.MetricID]uint64{
				goLogin.MetricLoginSuccess:         7,
				goLogin.MetricLoginFailure:         3,
				goLogin.MetricLoginInvalidPassword: 2,
				goLogin.MetricLoginUnverified:      1,
				goLogin.MetricSessionCreated:       7,
			},
			Histograms: map[goLogin.MetricID][]uint64{
				goLogin.MetricLoginLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
			HistogramSums: map[goLogin.MetricID]time.Duration{
				goLogin.MetricLoginLatency: 2250 * time.Millisecond,
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"# TYPE gologin_logins_total counter\n",
		`gologin_logins_total{result="success"} 7`,
		`gologin_logins_total{result="failure"} 3`,
		`gologin_login_rejections_total{reason="invalid_password"} 2`,
		`gologin_login_rejections_total{reason="unverified"} 1`,
		`gologin_login_rejections_total{reason="user_not_found"} 0`,
		"gologin_sessions_created_total 7\n",
		`gologin_session_validations_total{result="failure"} 0`,
		"# TYPE gologin_login_duration_seconds histogram\n",
		`gologin_login_duration_seconds_bucket{le="0.005"} 1`,
		`gologin_login_duration_seconds_bucket{le="+Inf"} 36`,
		"gologin_login_duration_seconds_sum 2.25\n",
		"gologin_login_duration_seconds_count 36\n",
		"gologin_audit_dropped_total 2\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}

	if n := strings.Count(out, "# HELP gologin_logins_total "); n != 1 {
		t.Fatalf("expected one HELP line per family, got %d", n)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goLogin.MetricsSnapshot{
			Counters: map[goLogin.MetricID]uint64{goLogin.MetricLoginSuccess: 1},
		},
	})
	if a, b := exp.Render(), exp.Render(); a != b {
		t.Fatal("expected identical output for identical snapshots")
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goLogin.MetricsSnapshot{
			Counters: map[goLogin.MetricID]uint64{goLogin.MetricLoginSuccess: 1},
		},
	})

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); got != ContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := escapeLabel("a\"b\\c\nd"); got != `a\"b\\c\nd` {
		t.Fatalf("unexpected escape %q", got)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goLogin.MetricsSnapshot{
			Counters: map[goLogin.MetricID]uint64{
				goLogin.MetricLoginSuccess:           1000,
				goLogin.MetricLoginFailure:           40,
				goLogin.MetricLoginInvalidPassword:   30,
				goLogin.MetricSessionCreated:         1000,
				goLogin.MetricSessionValidateSuccess: 4000,
			},
			Histograms: map[goLogin.MetricID][]uint64{
				goLogin.MetricLoginLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
