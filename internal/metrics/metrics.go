// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証操作のラベル値。
const (
	OpSignup  = "signup"
	OpLogin   = "login"
	OpRefresh = "refresh"
	OpLogout  = "logout"
)

// 認証結果のラベル値。
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeConflict   = "conflict"
	OutcomeForbidden  = "forbidden"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordAuth(operation, outcome string)
	RecordHashLatency(operation string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordRefreshTokensCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authTotal     *prometheus.CounterVec
	hashLatency   *prometheus.HistogramVec
	httpStatus    *prometheus.CounterVec
	tokensCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_auth_total",
			Help: "認証操作の結果別の合計数",
		}, []string{"operation", "outcome"}),
		hashLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_password_hash_seconds",
			Help:    "パスワードハッシュ計算・検証のレイテンシ（秒）",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		tokensCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_refresh_tokens_cleaned_total",
			Help: "クリーンアップで削除されたリフレッシュトークンの合計数",
		}),
	}

	reg.MustRegister(
		c.authTotal,
		c.hashLatency,
		c.httpStatus,
		c.tokensCleaned,
	)

	return c
}

// RecordAuth は認証操作の結果を記録する。
func (c *Collector) RecordAuth(operation, outcome string) {
	c.authTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordHashLatency はパスワードハッシュ処理のレイテンシを記録する。
func (c *Collector) RecordHashLatency(operation string, duration time.Duration) {
	c.hashLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRefreshTokensCleaned はクリーンアップで削除した件数を記録する。
func (c *Collector) RecordRefreshTokensCleaned(count int64) {
	c.tokensCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordAuth(string, string) {}
func (Nop) RecordHashLatency(string, time.Duration) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordRefreshTokensCleaned(int64) {}
