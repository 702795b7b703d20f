package config

type RateLimit struct {
	Enabled       bool  `mapstructure:"ENABLED" json:"enabled" yaml:"enabled"`
	WindowSeconds int64 `mapstructure:"WINDOW_SECONDS" json:"window_seconds" yaml:"window_seconds"`
	MaxRequests   int   `mapstructure:"MAX_REQUESTS" json:"max_requests" yaml:"max_requests"`
}
