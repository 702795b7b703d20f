package config

type MongoDB struct {
	URI     string `mapstructure:"URI" json:"uri" yaml:"uri"`
	Options string `mapstructure:"OPTIONS" json:"options" yaml:"options"`
	// 租戶資料庫名稱前綴，例如 tenant_acme
	TenantPrefix string `mapstructure:"TENANT_PREFIX" json:"tenant_prefix" yaml:"tenant_prefix"`
	// 建立租戶連線的逾時秒數
	ConnectTimeoutSeconds int `mapstructure:"CONNECT_TIMEOUT_SECONDS" json:"connect_timeout_seconds" yaml:"connect_timeout_seconds"`
}
