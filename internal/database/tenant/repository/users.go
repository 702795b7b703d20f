package repository

import (
	"context"
	"time"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository 操作單一租戶資料庫的 users 集合。
// 以 Handle 即建即用，生命週期跟著請求走，不進 wire。
type UserRepository struct {
	collection tenant.Collection
}

func NewUserRepository(handle *tenant.Handle) *UserRepository {
	return &UserRepository{
		collection: handle.Collection(core.TenantCollectionUsers),
	}
}

// GetByEmail 登入流程用：需要比對密碼，所以不做投影
func (repository *UserRepository) GetByEmail(
	contextValue context.Context,
	email string,
) (_ *model.TenantUser, returnedError error) {

	var user model.TenantUser
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"email": email}, nil, &user); returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

// GetByID 一般讀取：密碼雜湊永遠排除在外
func (repository *UserRepository) GetByID(
	contextValue context.Context,
	userIdentifier string,
) (_ *model.TenantUser, returnedError error) {

	objectID, parseError := tenant.ParseObjectID(userIdentifier)
	if parseError != nil {
		return nil, parseError
	}
	var user model.TenantUser
	projection := bson.M{"password": 0}
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": objectID}, projection, &user); returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

func (repository *UserRepository) Create(
	contextValue context.Context,
	user *model.TenantUser,
) (_ string, returnedError error) {

	nowUTC := time.Now().UTC()
	user.CreatedAt = nowUTC
	user.UpdatedAt = nowUTC
	return repository.collection.InsertOne(contextValue, user)
}

func (repository *UserRepository) UpdateLastLogin(
	contextValue context.Context,
	userIdentifier string,
	loginTime time.Time,
) (_ int64, returnedError error) {

	update := bson.M{"$set": bson.M{
		"lastLoginAt": loginTime.UTC(),
		"updatedAt":   time.Now().UTC(),
	}}
	return repository.collection.UpdateByID(contextValue, userIdentifier, update)
}

func (repository *UserRepository) Count(
	contextValue context.Context,
) (_ int64, returnedError error) {
	return repository.collection.Count(contextValue, nil)
}
