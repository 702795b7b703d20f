package config

type MetricConfig struct {
	Enabled bool      `yaml:"enabled" mapstructure:"ENABLED" json:"enabled"`
	Buckets []float64 `yaml:"buckets" mapstructure:"BUCKETS" json:"buckets"`
}

type TraceConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"ENABLED" json:"enabled"`
	EndpointUrl string `yaml:"endpointUrl" mapstructure:"ENDPOINT_URL" json:"endpointUrl"`
}

// TelemetryConfig Prometheus 指標與 OTLP trace 匯出設定
type TelemetryConfig struct {
	Metric MetricConfig `yaml:"metric" mapstructure:"METRIC" json:"metric"`
	Trace  TraceConfig  `yaml:"trace" mapstructure:"TRACE" json:"trace"`
}
