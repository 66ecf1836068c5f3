package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests 按方法/路由/状态码统计请求数
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classhub", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPDuration 请求耗时分布
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "classhub", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// InviteRedemptions 按结果统计邀请码兑换（success/invalid/expired/exhausted/duplicate）
	InviteRedemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classhub", Name: "invite_redemptions_total", Help: "Invite code redemption outcomes",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, InviteRedemptions)
}

// Handler 返回 /metrics 端点处理器
func Handler() http.Handler { return promhttp.Handler() }

// ObserveHTTP 记录单次请求指标
func ObserveHTTP(method, path, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, path, status).Inc()
	HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
