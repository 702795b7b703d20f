package core

import "go.mongodb.org/mongo-driver/bson"

// ─── MongoDB ───────────────────────────────────────────────────────────────────

type MongoDatabaseName string
type MongoCollection string
type RedisKey string
type FluentdSubTag string

// 控制平面資料庫（所有租戶共用）
const (
	MongoDBControlPlane MongoDatabaseName = "billstack"
)

const (
	MongoCollectionTenants MongoCollection = "tenants"
)

// 每個租戶隔離資料庫內的集合
const (
	TenantCollectionUsers     MongoCollection = "users"
	TenantCollectionCustomers MongoCollection = "customers"
	TenantCollectionProducts  MongoCollection = "products"
	TenantCollectionInvoices  MongoCollection = "invoices"
	TenantCollectionCounters  MongoCollection = "counters" // 發票流水號等序列
)

// ReservedTenantKeys 不可作為租戶識別字的子網域
var ReservedTenantKeys = []string{"admin", "www", "main", "api", "app"}

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyServerName RedisKey = "billstack"
	RedisKeyRateLimit  RedisKey = "ratelimit"
)

const (
	FluentdRequest  FluentdSubTag = "request_log"
	FluentdResponse FluentdSubTag = "response_log"
)

type ListOptions struct {
	Filter bson.M `json:"filter,omitempty" bson:"filter,omitempty"`
	Page   int64  `json:"page,omitempty" bson:"page,omitempty"`
	Size   int64  `json:"size,omitempty" bson:"size,omitempty"`
}
