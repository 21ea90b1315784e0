package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/guard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "guard",
		DurationBuckets: []float64{0.00001, 0.001, 0.1},
	}
}

func TestCollector_RecordDecision(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordDecision("network", "network.success.ok", "success", 3*time.Microsecond)
	collector.RecordDecision("network", "network.success.ok", "success", 5*time.Microsecond)
	collector.RecordDecision("orders", "orders.manual_review", "warning", time.Microsecond)

	if got := testutil.ToFloat64(collector.decisionMetrics.decisionsTotal.WithLabelValues("network", "network.success.ok", "success")); got != 2 {
		t.Errorf("network decisions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.decisionMetrics.decisionsTotal.WithLabelValues("orders", "orders.manual_review", "warning")); got != 1 {
		t.Errorf("orders decisions = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.decisionMetrics.decisionDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordDecision("files", "files.read.allow", "success", time.Microsecond)
	collector.RecordDecodeError("files")
	collector.RecordAuditDropped()

	if got := testutil.CollectAndCount(collector.decisionMetrics.decisionsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d decision series", got)
	}
	if got := testutil.ToFloat64(collector.auditMetrics.dropped); got != 0 {
		t.Errorf("disabled collector recorded %v drops", got)
	}
}

func TestCollector_DecodeErrors(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordDecodeError("dbquery")
	collector.RecordDecodeError("")
	for i := range 200 {
		collector.RecordDecodeError(fmt.Sprintf("junk-%d", i))
	}

	// Only real domains get their own series; everything else shares one.
	if got := testutil.CollectAndCount(collector.decisionMetrics.decodeErrors); got != 2 {
		t.Errorf("decode error series = %d, want 2", got)
	}
	if got := testutil.ToFloat64(collector.decisionMetrics.decodeErrors.WithLabelValues("dbquery")); got != 1 {
		t.Errorf("dbquery decode errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.decisionMetrics.decodeErrors.WithLabelValues("unknown")); got != 201 {
		t.Errorf("unknown decode errors = %v, want 201", got)
	}
}

func TestCollector_Audit(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordAuditWrite(nil)
	collector.RecordAuditWrite(errors.New("disk full"))
	collector.RecordAuditDropped()
	collector.RecordAuditPruned(7)
	collector.RecordAuditPruned(0)

	if got := testutil.ToFloat64(collector.auditMetrics.recordsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.auditMetrics.recordsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.auditMetrics.dropped); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.auditMetrics.pruned); got != 7 {
		t.Errorf("pruned = %v, want 7", got)
	}
}

func TestCollector_Catalog(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordCatalogReload(true)
	collector.RecordCatalogReload(false)
	collector.RecordCatalogReload(true)
	collector.SetRuleCount("network", 13)

	if got := testutil.ToFloat64(collector.catalogMetrics.reloadsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("successful reloads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.catalogMetrics.rules.WithLabelValues("network")); got != 13 {
		t.Errorf("network rules = %v, want 13", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordDecision("access", "access.get_user.allow", "success", time.Microsecond)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `guard_decisions_total{domain="access",outcome="success",rule_id="access.get_user.allow"} 1`) {
		t.Errorf("metrics output missing decision counter:\n%s", body)
	}
}

func TestCollector_Serve(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	mount := func(mux *http.ServeMux) {
		mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "pong") })
	}
	go func() { done <- collector.Serve(ctx, addr, "/metrics", mount) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/metrics")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get("http://" + addr + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("mounted handler body = %q, want pong", body)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Serve() error = %v", err)
	}
}
