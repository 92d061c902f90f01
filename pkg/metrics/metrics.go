package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP 层指标，由 PrometheusMiddleware 上报。
var (
	HTTPRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialserver",
		Name:      "http_requests_total",
		Help:      "HTTP 请求总数",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "socialserver",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP 请求耗时分布",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// 网关（WebSocket）层指标。
var (
	// WSOnlineConnections 当前在线连接数
	WSOnlineConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "socialserver",
		Name:      "ws_online_connections",
		Help:      "当前在线 WebSocket 连接数",
	})

	// WSEventTotal 按事件类型统计的收发帧数，direction=in/out
	WSEventTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialserver",
		Name:      "ws_events_total",
		Help:      "WebSocket 事件总数",
	}, []string{"type", "direction"})
)
