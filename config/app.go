package config

type App struct {
	// 當前開發環境
	Env string `mapstructure:"ENV" json:"env" yaml:"env"`
	// 服務端口
	Port uint32 `mapstructure:"PORT" json:"port" yaml:"port"`
	// 服務名稱
	Name string `mapstructure:"NAME" json:"name" yaml:"name"`
	// 服務版本
	Version string `mapstructure:"VERSION" json:"version" yaml:"version"`
	// JWT 簽名密鑰
	JWTSecret string `mapstructure:"JWT_SECRET" json:"jwt_secret" yaml:"jwt_secret"`
	// JWT 有效時數（預設 168 = 7 天）
	JWTExpireHours int  `mapstructure:"JWT_EXPIRE_HOURS" json:"jwt_expire_hours" yaml:"jwt_expire_hours"`
	SwaggerEnabled bool `mapstructure:"SWAGGER_ENABLED" json:"swagger_enabled" yaml:"swagger_enabled"`
}
