package repository

import (
	"context"
	"fmt"
	"time"

	"billstack/internal/core"
	client "billstack/internal/database/client"
	"billstack/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TenantsRepository 控制平面的租戶目錄
type TenantsRepository struct {
	collection *mongo.Collection
}

func NewTenantsRepository(mongoClient *client.MongoClient) *TenantsRepository {
	repository := &TenantsRepository{
		collection: mongoClient.Client().Database(string(core.MongoDBControlPlane)).Collection(string(core.MongoCollectionTenants)),
	}
	// 建議：啟動時建立常用索引（冪等、存在即跳過）
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *TenantsRepository) ensureIndexes(contextValue context.Context) error {
	_, _ = repository.collection.Indexes().CreateMany(contextValue, model.TenantIndexes)
	return nil
}

// Create：單文件插入
func (repository *TenantsRepository) Create(
	contextValue context.Context,
	tenant *model.Tenant,
) (_ *model.Tenant, returnedError error) {

	nowUTC := time.Now().UTC()
	if tenant.ID.IsZero() {
		tenant.ID = primitive.NewObjectID()
	}
	tenant.CreatedAt = nowUTC
	tenant.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, tenant)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	tenant.ID = objectID
	return tenant, nil
}

// GetByID：單文件讀取
func (repository *TenantsRepository) GetByID(
	contextValue context.Context,
	tenantIdentifier primitive.ObjectID,
) (_ *model.Tenant, returnedError error) {

	var tenant model.Tenant
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": tenantIdentifier}).Decode(&tenant); returnedError != nil {
		return nil, returnedError
	}
	return &tenant, nil
}

// GetBySubdomain：租戶解析的主查詢路徑
func (repository *TenantsRepository) GetBySubdomain(
	contextValue context.Context,
	subdomain string,
) (_ *model.Tenant, returnedError error) {

	var tenant model.Tenant
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"subdomain": subdomain}).Decode(&tenant); returnedError != nil {
		return nil, returnedError
	}
	return &tenant, nil
}

// ExistsBySubdomainOrEmail：註冊時的唯一性預檢（索引仍是最終防線）
func (repository *TenantsRepository) ExistsBySubdomainOrEmail(
	contextValue context.Context,
	subdomain string,
	email string,
) (_ bool, returnedError error) {

	filter := bson.M{"$or": []bson.M{
		{"subdomain": subdomain},
		{"email": email},
	}}
	count, countError := repository.collection.CountDocuments(contextValue, filter)
	if countError != nil {
		return false, countError
	}
	return count > 0, nil
}

// UpdateByID：將呼叫端給的欄位寫入 $set（請確認呼叫端只傳「欄位值」，不要傳 $inc 之類 operator）
func (repository *TenantsRepository) UpdateByID(
	contextValue context.Context,
	tenantIdentifier primitive.ObjectID,
	setFields bson.M,
) (_ int64, returnedError error) {

	update := bson.M{"$set": setFields}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": tenantIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// IncrementUsage：用量計數（$inc，field 例如 "usage.invoicesThisMonth"）
func (repository *TenantsRepository) IncrementUsage(
	contextValue context.Context,
	tenantIdentifier primitive.ObjectID,
	field string,
	delta int64,
) (_ int64, returnedError error) {

	update := bson.M{"$inc": bson.M{field: delta}}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": tenantIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// ResetMonthlyUsage：每月排程歸零所有租戶的當月發票用量
func (repository *TenantsRepository) ResetMonthlyUsage(
	contextValue context.Context,
) (_ int64, returnedError error) {

	update := bson.M{"$set": bson.M{"usage.invoicesThisMonth": int64(0)}}
	result, updateError := repository.collection.UpdateMany(contextValue, bson.M{}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.ModifiedCount, nil
}

// List：分頁查詢（page 為 0 起算）
func (repository *TenantsRepository) List(
	contextValue context.Context,
	listOptions core.ListOptions,
) (_ []*model.Tenant, returnedError error) {

	findOptions := options.Find().
		SetSkip(listOptions.Page * listOptions.Size).
		SetLimit(listOptions.Size).
		SetSort(bson.M{"createdAt": -1})

	filter := listOptions.Filter
	if filter == nil {
		filter = bson.M{}
	}
	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var tenants []*model.Tenant
	if returnedError = cursor.All(contextValue, &tenants); returnedError != nil {
		return nil, returnedError
	}
	return tenants, nil
}

func (repository *TenantsRepository) Count(
	contextValue context.Context,
	filter bson.M,
) (_ int64, returnedError error) {

	if filter == nil {
		filter = bson.M{}
	}
	return repository.collection.CountDocuments(contextValue, filter)
}

// DashboardStats 平台儀表板彙總
type DashboardStats struct {
	TotalTenants     int64 `json:"totalTenants" bson:"totalTenants"`
	ActiveTenants    int64 `json:"activeTenants" bson:"activeTenants"`
	TrialTenants     int64 `json:"trialTenants" bson:"trialTenants"`
	SuspendedTenants int64 `json:"suspendedTenants" bson:"suspendedTenants"`
	MonthlyRevenue   int64 `json:"monthlyRevenue" bson:"monthlyRevenue"`
}

// Dashboard：單趟 aggregation 算出各狀態租戶數與月營收
// （active 租戶依方案定價加總）
func (repository *TenantsRepository) Dashboard(
	contextValue context.Context,
) (_ *DashboardStats, returnedError error) {

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"totalTenants": bson.M{"$sum": 1},
			"activeTenants": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$subscription.status", core.SubscriptionActive}}, 1, 0,
			}}},
			"trialTenants": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$subscription.status", core.SubscriptionTrial}}, 1, 0,
			}}},
			"suspendedTenants": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$subscription.status", core.SubscriptionSuspended}}, 1, 0,
			}}},
			"monthlyRevenue": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$subscription.status", core.SubscriptionActive}},
				bson.M{"$switch": bson.M{
					"branches": bson.A{
						bson.M{"case": bson.M{"$eq": bson.A{"$subscription.plan", core.PlanBasic}}, "then": core.PlanPrices[core.PlanBasic]},
						bson.M{"case": bson.M{"$eq": bson.A{"$subscription.plan", core.PlanPro}}, "then": core.PlanPrices[core.PlanPro]},
						bson.M{"case": bson.M{"$eq": bson.A{"$subscription.plan", core.PlanEnterprise}}, "then": core.PlanPrices[core.PlanEnterprise]},
					},
					"default": 0,
				}},
				0,
			}}},
		}}},
	}

	cursor, aggregateError := repository.collection.Aggregate(contextValue, pipeline)
	if aggregateError != nil {
		return nil, aggregateError
	}
	defer cursor.Close(contextValue)

	var results []DashboardStats
	if returnedError = cursor.All(contextValue, &results); returnedError != nil {
		return nil, returnedError
	}
	if len(results) == 0 {
		return &DashboardStats{}, nil
	}
	return &results[0], nil
}
