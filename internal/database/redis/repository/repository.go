package repository

import (
	"github.com/google/wire"
)

// RedisRepository 彙整所有 Redis 端的 repository；
// 目前只有限流一個，之後加會話快取之類的也掛這裡。
type RedisRepository struct {
	rateLimiter *RateLimiterRepository
}

func NewRedisRepository(
	rateLimiter *RateLimiterRepository,
) *RedisRepository {
	return &RedisRepository{
		rateLimiter: rateLimiter,
	}
}

var ProviderSet = wire.NewSet(
	NewRateLimiterRepository,
	NewRedisRepository)
