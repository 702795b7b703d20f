package model

import (
	"time"

	"billstack/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TenantSubscription struct {
	Plan      core.SubscriptionPlan   `json:"plan" bson:"plan"`           // 訂閱方案
	Status    core.SubscriptionStatus `json:"status" bson:"status"`       // 訂閱狀態
	Price     int64                   `json:"price" bson:"price"`         // 月費（依方案定價）
	StartedAt time.Time               `json:"startedAt" bson:"startedAt"` // 訂閱起始
	ExpiresAt *time.Time              `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
}

type TenantLimits struct {
	MaxUsers            int64 `json:"maxUsers" bson:"maxUsers"`
	MaxInvoicesPerMonth int64 `json:"maxInvoicesPerMonth" bson:"maxInvoicesPerMonth"`
	MaxProducts         int64 `json:"maxProducts" bson:"maxProducts"`
}

type TenantUsage struct {
	Users             int64 `json:"users" bson:"users"`
	InvoicesThisMonth int64 `json:"invoicesThisMonth" bson:"invoicesThisMonth"`
	Products          int64 `json:"products" bson:"products"`
}

// Tenant 控制平面的租戶目錄文件；Subdomain 即租戶識別字，
// 對應到資料平面的 tenant_<subdomain> 資料庫。
type Tenant struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	BusinessName string             `json:"businessName" bson:"businessName"`
	Subdomain    string             `json:"subdomain" bson:"subdomain"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	GSTIN        string             `json:"gstin,omitempty" bson:"gstin,omitempty"` // 商家稅籍編號
	State        string             `json:"state" bson:"state"`                     // 商家註冊州別（稅額拆分依據）
	Address      string             `json:"address,omitempty" bson:"address,omitempty"`
	IsActive     bool               `json:"isActive" bson:"isActive"` // 平台層啟用旗標；停用是軟刪除，與訂閱狀態無關
	Subscription TenantSubscription `json:"subscription" bson:"subscription"`
	Limits       TenantLimits       `json:"limits" bson:"limits"`
	Usage        TenantUsage        `json:"usage" bson:"usage"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

var TenantIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "subdomain", Value: 1}},
		Options: options.Index().SetName("uniq_subdomain").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "subscription.status", Value: 1}},
		Options: options.Index().SetName("idx_subscription_status"),
	},
}

// DefaultLimits 各方案的用量上限
func DefaultLimits(plan core.SubscriptionPlan) TenantLimits {
	switch plan {
	case core.PlanPro:
		return TenantLimits{MaxUsers: 10, MaxInvoicesPerMonth: 500, MaxProducts: 1000}
	case core.PlanEnterprise:
		return TenantLimits{MaxUsers: 50, MaxInvoicesPerMonth: 5000, MaxProducts: 10000}
	default:
		return TenantLimits{MaxUsers: 3, MaxInvoicesPerMonth: 100, MaxProducts: 200}
	}
}
