package repository

import (
	"github.com/google/wire"
)

// FluentdRepository 彙整 Fluentd 端的 repository；
// 請求與回應記錄都走 LogRepository。
type FluentdRepository struct {
	logs *LogRepository
}

func NewFluentdRepository(
	logs *LogRepository,
) *FluentdRepository {
	return &FluentdRepository{
		logs: logs,
	}
}

var ProviderSet = wire.NewSet(
	NewLogRepository,
	NewFluentdRepository)
