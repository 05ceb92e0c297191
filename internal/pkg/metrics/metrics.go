package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventgallery"

var (
	// FeedFetches 相册批次拉取, mode=reset|append, result=ok|error|stale
	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetch_total",
		Help:      "Gallery feed batch fetches by mode and result.",
	}, []string{"mode", "result"})

	// FeedFetchLatency 单次批次拉取耗时
	FeedFetchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_fetch_seconds",
		Help:      "Latency of merged photo and video batch fetches.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"mode"})

	// DeleteActions 软删除动作结果, result=done|rejected|declined
	DeleteActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delete_action_total",
		Help:      "Soft delete actions by outcome.",
	}, []string{"result"})

	// Uploads 访客上传文件结果
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_total",
		Help:      "Guest uploaded files by kind and result.",
	}, []string{"kind", "result"})

	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_bytes_total",
		Help:      "Bytes written to blob storage by guest uploads.",
	})

	// OpenViews 当前打开的相册视图数
	OpenViews = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_views",
		Help:      "Gallery views currently held in memory.",
	})
)

// Handler /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
