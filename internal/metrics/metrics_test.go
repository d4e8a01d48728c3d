package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は指定された名前のメトリクスファミリーを返す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordAuth_CountsByOperationAndOutcome は操作と結果のラベル別に集計されることを検証する。
func TestRecordAuth_CountsByOperationAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuth(OpLogin, OutcomeSuccess)
	c.RecordAuth(OpLogin, OutcomeSuccess)
	c.RecordAuth(OpLogin, OutcomeForbidden)

	mf := findMetric(t, reg, "tracker_auth_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		if labelValue(m, "operation") != OpLogin {
			t.Errorf("operation = %q, want %q", labelValue(m, "operation"), OpLogin)
		}
		switch labelValue(m, "outcome") {
		case OutcomeSuccess:
			if v := m.GetCounter().GetValue(); v != 2 {
				t.Errorf("success = %v, want 2", v)
			}
		case OutcomeForbidden:
			if v := m.GetCounter().GetValue(); v != 1 {
				t.Errorf("forbidden = %v, want 1", v)
			}
		default:
			t.Errorf("unexpected outcome label %q", labelValue(m, "outcome"))
		}
	}
}

// TestRecordHashLatency_RecordsHistogram はハッシュ処理のレイテンシがヒストグラムに記録されることを検証する。
func TestRecordHashLatency_RecordsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHashLatency("hash", 40*time.Millisecond)
	c.RecordHashLatency("hash", 60*time.Millisecond)

	mf := findMetric(t, reg, "tracker_password_hash_seconds")
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if sum := h.GetSampleSum(); sum < 0.099 || sum > 0.101 {
		t.Errorf("sample sum = %v, want ~0.1", sum)
	}
}

// TestRecordHTTPStatus_IncrementsByStatusCode はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_IncrementsByStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	mf := findMetric(t, reg, "tracker_http_status_total")
	for _, m := range mf.GetMetric() {
		switch labelValue(m, "status_code") {
		case "200":
			if v := m.GetCounter().GetValue(); v != 2 {
				t.Errorf("200 = %v, want 2", v)
			}
		case "404":
			if v := m.GetCounter().GetValue(); v != 1 {
				t.Errorf("404 = %v, want 1", v)
			}
		}
	}
}

// TestRecordRefreshTokensCleaned_AddsCount は削除件数が加算されることを検証する。
func TestRecordRefreshTokensCleaned_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRefreshTokensCleaned(3)
	c.RecordRefreshTokensCleaned(0)

	mf := findMetric(t, reg, "tracker_refresh_tokens_cleaned_total")
	if v := mf.GetMetric()[0].GetCounter().GetValue(); v != 3 {
		t.Errorf("cleaned = %v, want 3", v)
	}
}

// TestCollector_ImplementsInterface はCollectorとNopがインターフェースを満たすことを検証する。
func TestCollector_ImplementsInterface(t *testing.T) {
	var _ MetricsCollector = (*Collector)(nil)
	var _ MetricsCollector = Nop{}
}
