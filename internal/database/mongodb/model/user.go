package model

import (
	"time"

	"billstack/internal/core"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TenantUser 存在各租戶自己的資料庫（users 集合），不在控制平面
type TenantUser struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"` // bcrypt hash，永不序列化到回應
	Role        core.Role          `json:"role" bson:"role"`
	Permissions []core.Permission  `json:"permissions" bson:"permissions"`
	Active      bool               `json:"active" bson:"active"`
	LastLoginAt *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
