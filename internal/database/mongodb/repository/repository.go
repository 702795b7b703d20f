package repository

import (
	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
)

// 統一管理所有控制平面 repository
type MongoDBRepository struct {
	tenantsRepository *TenantsRepository
}

// 建立控制平面 repository 物件
func NewMongoDBRepository(
	tenantsRepository *TenantsRepository,
) *MongoDBRepository {
	return &MongoDBRepository{
		tenantsRepository: tenantsRepository,
	}
}

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewTenantsRepository,
	NewMongoDBRepository)

func withUpdatedAt(update bson.M) bson.M {
	// 確保 $currentDate 存在
	currentDate, ok := update["$currentDate"].(bson.M)
	if !ok || currentDate == nil {
		currentDate = bson.M{}
	}
	currentDate["updatedAt"] = true
	update["$currentDate"] = currentDate
	return update
}
