package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goAudit "github.com/MrEthical07/goAudit"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot goAudit.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goAudit.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                     { return f.dropped }

func sampleSource() fakeSource {
	return fakeSource{
		snapshot: goAudit.MetricsSnapshot{
			Counters: map[goAudit.MetricID]uint64{
				goAudit.MetricEventEmitted:  7,
				goAudit.MetricEventRejected: 1,
			},
			Histograms: map[goAudit.MetricID][]uint64{
				goAudit.MetricDeliveryLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	}
}

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goAudit.MetricsSnapshot{
			Counters:   map[goAudit.MetricID]uint64{},
			Histograms: map[goAudit.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	out := NewPrometheusExporterFromSource(sampleSource()).Render()

	for _, want := range []string{
		"goaudit_event_emitted_total 7",
		"goaudit_event_rejected_total 1",
		"goaudit_delivery_latency_seconds_bucket{le=\"0.005\"} 1",
		"goaudit_delivery_latency_seconds_bucket{le=\"+Inf\"} 36",
		"goaudit_event_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestCollectorMatchesRender(t *testing.T) {
	exp := NewPrometheusExporterFromSource(sampleSource())

	if n := testutil.CollectAndCount(exp); n != 6 {
		t.Fatalf("expected 6 collected metrics, got %d", n)
	}

	expected := `
# HELP goaudit_event_emitted_total Documents handed to Send.
# TYPE goaudit_event_emitted_total counter
goaudit_event_emitted_total 7
# HELP goaudit_event_dropped_total Events dropped because the dispatch buffer was full.
# TYPE goaudit_event_dropped_total counter
goaudit_event_dropped_total 2
`
	if err := testutil.CollectAndCompare(exp, strings.NewReader(expected),
		"goaudit_event_emitted_total", "goaudit_event_dropped_total"); err != nil {
		t.Fatal(err)
	}

	problems, err := testutil.CollectAndLint(exp)
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if len(problems) > 0 {
		t.Fatalf("lint problems: %v", problems)
	}
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prom.NewRegistry()
	exp := NewPrometheusExporterFromSource(sampleSource())
	if err := reg.Register(exp); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.Register(NewPrometheusExporterFromSource(sampleSource())); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestHandlerServesExposition(t *testing.T) {
	exp := NewPrometheusExporterFromSource(sampleSource())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "goaudit_delivery_latency_seconds_count 36") {
		t.Fatalf("expected histogram count in body, got:\n%s", body)
	}
}

func TestExporterReadsEmitter(t *testing.T) {
	emitter, err := goAudit.New().WithSink(goAudit.NoOpSink{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer emitter.Close()

	doc := emitter.NewObject()
	doc.AddString("x", goAudit.String("\xff"))
	_ = emitter.Send(t.Context(), "t", doc)

	exp := NewPrometheusExporter(emitter)
	if !strings.Contains(exp.Render(), "goaudit_event_rejected_total 1") {
		t.Fatalf("expected rejected counter, got:\n%s", exp.Render())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(sampleSource())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
