package database

import (
	client "billstack/internal/database/client"
	fluentdRepo "billstack/internal/database/fluentd/repository"
	mongoRepo "billstack/internal/database/mongodb/repository"
	redisRepo "billstack/internal/database/redis/repository"
	"billstack/internal/database/tenant"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
	tenant.NewMongoConnector,
	wire.Bind(new(tenant.Connector), new(*tenant.MongoConnector)),
	tenant.NewRegistry,
)
