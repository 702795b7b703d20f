package telemetry

import (
	"billstack/config"
	"billstack/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct
type Metric struct {
	HttpRequestsTotal    *prometheus.CounterVec
	HttpRequestDuration  *prometheus.HistogramVec
	TenantConnections    prometheus.Gauge
	TenantConnectTotal   *prometheus.CounterVec
	TenantEvictionsTotal *prometheus.CounterVec
	RateLimitedTotal     *prometheus.CounterVec
	config               *config.Configuration
}

// NewMetric 建立所有指標
func NewMetric(config *config.Configuration) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	return &Metric{
		config: config,
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    config.App.Name + "_" + string(core.MetricHttpRequestDuration),
				Help:    "Request duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		TenantConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: config.App.Name + "_" + string(core.MetricTenantConnections),
				Help: "Live tenant datastore connections held by the registry",
			},
		),
		TenantConnectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricTenantConnectTotal),
				Help: "Tenant connection establishment attempts",
			},
			labelNames(core.MetricLabelStatus),
		),
		TenantEvictionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricTenantEvictionsTotal),
				Help: "Tenant connections evicted from the registry",
			},
			labelNames(core.MetricLabelReason),
		),
		RateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricRateLimitTotal),
				Help: "Requests rejected by the rate limiter",
			},
			labelNames(core.MetricLabelEndpoint),
		),
	}
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
