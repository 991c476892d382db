// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス記録のインターフェース。
// APIクライアント・ウィザード・セッション管理から利用する。
type Recorder interface {
	// RecordAPICall はバックエンドAPI呼び出しを記録する。通信エラー時のstatusCodeは0。
	RecordAPICall(endpoint string, statusCode int, duration time.Duration)
	// RecordWizardStep はウィザードの各ステップの送信結果を記録する。
	RecordWizardStep(step string, outcome string)
	// RecordSessionEvent はログイン・登録・ログアウト・期限切れを記録する。
	RecordSessionEvent(event string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	apiCalls      *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	wizardSteps   *prometheus.CounterVec
	sessionEvents *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubex_web_api_calls_total",
			Help: "バックエンドAPI呼び出し数（エンドポイント・ステータスクラス別）",
		}, []string{"endpoint", "status_class"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kubex_web_api_call_duration_seconds",
			Help:    "バックエンドAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		wizardSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubex_web_wizard_steps_total",
			Help: "送金ウィザードのステップ送信数（ステップ・結果別）",
		}, []string{"step", "outcome"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubex_web_session_events_total",
			Help: "セッションイベント数",
		}, []string{"event"}),
	}

	reg.MustRegister(
		c.apiCalls,
		c.apiLatency,
		c.wizardSteps,
		c.sessionEvents,
	)

	return c
}

// RecordAPICall はバックエンドAPI呼び出しを記録する。
func (c *Collector) RecordAPICall(endpoint string, statusCode int, duration time.Duration) {
	c.apiCalls.WithLabelValues(endpoint, StatusClass(statusCode)).Inc()
	c.apiLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordWizardStep はウィザードのステップ送信結果を記録する。
func (c *Collector) RecordWizardStep(step string, outcome string) {
	c.wizardSteps.WithLabelValues(step, outcome).Inc()
}

// RecordSessionEvent はセッションイベントを記録する。
func (c *Collector) RecordSessionEvent(event string) {
	c.sessionEvents.WithLabelValues(event).Inc()
}

// StatusClass はHTTPステータスコードを"2xx"形式のクラスに変換する。
// 0（通信エラー）は"error"とする。
func StatusClass(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "error"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}

// Nop は何も記録しないRecorder。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordAPICall(string, int, time.Duration) {}
func (Nop) RecordWizardStep(string, string) {}
func (Nop) RecordSessionEvent(string) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
