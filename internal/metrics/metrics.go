package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stream",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stream",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	ActiveTorrents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stream",
		Name:      "active_torrents",
		Help:      "Number of torrents currently tracked by the store.",
	})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stream",
		Name:      "active_sessions",
		Help:      "Number of web sessions currently registered.",
	})

	WSClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stream",
		Name:      "ws_clients",
		Help:      "Number of connected WebSocket clients.",
	})

	DownloadSpeedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stream",
		Name:      "download_speed_bytes",
		Help:      "Current aggregate download speed in bytes per second.",
	})

	UploadSpeedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stream",
		Name:      "upload_speed_bytes",
		Help:      "Current aggregate upload speed in bytes per second.",
	})

	PeersConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stream",
		Name:      "peers_connected",
		Help:      "Total number of peers connected across all torrents.",
	})

	PlayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stream",
		Name:      "play_requests_total",
		Help:      "Total play requests by outcome.",
	}, []string{"outcome"})

	VideoReadyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stream",
		Name:      "video_ready_total",
		Help:      "Total number of video_ready events published.",
	})

	MonitorExitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stream",
		Name:      "monitor_exits_total",
		Help:      "Total progress monitor exits by reason.",
	}, []string{"reason"})

	CatalogRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stream",
		Name:      "catalog_requests_total",
		Help:      "Total upstream catalog requests by outcome.",
	}, []string{"outcome"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ActiveTorrents,
		ActiveSessions,
		WSClients,
		DownloadSpeedBytes,
		UploadSpeedBytes,
		PeersConnected,
		PlayRequestsTotal,
		VideoReadyTotal,
		MonitorExitsTotal,
		CatalogRequestsTotal,
	)
}
