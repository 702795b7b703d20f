package dto

import (
	"time"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
)

type TenantResponseDto struct {
	ID           string                   `json:"id"`
	BusinessName string                   `json:"businessName"`
	Subdomain    string                   `json:"subdomain"`
	Email        string                   `json:"email"`
	State        string                   `json:"state"`
	IsActive     bool                     `json:"isActive"`
	Subscription model.TenantSubscription `json:"subscription"`
	Limits       model.TenantLimits       `json:"limits"`
	Usage        model.TenantUsage        `json:"usage"`
	CreatedAt    time.Time                `json:"createdAt"`
}

type TenantDetailResponseDto struct {
	TenantResponseDto
	Phone            string           `json:"phone,omitempty"`
	GSTIN            string           `json:"gstin,omitempty"`
	Address          string           `json:"address,omitempty"`
	CollectionCounts map[string]int64 `json:"collectionCounts,omitempty"`
	ConnectionStatus string           `json:"connectionStatus"`
}

type ListTenantsDto struct {
	Page   int64                   `form:"page" binding:"omitempty,min=0"`
	Size   int64                   `form:"size" binding:"omitempty,min=1,max=100"`
	Status core.SubscriptionStatus `form:"status" binding:"omitempty,oneof=trial active suspended inactive"`
}

type UpdateTenantStatusDto struct {
	Status core.SubscriptionStatus `json:"status" binding:"required,oneof=trial active suspended inactive"`
}

type UpdateTenantActivationDto struct {
	// 指標型別讓 binding 能分辨「沒帶」與「帶 false」
	IsActive *bool `json:"isActive" binding:"required"`
}

type UpdateTenantSubscriptionDto struct {
	Plan      core.SubscriptionPlan `json:"plan" binding:"required,oneof=basic pro enterprise"`
	ExpiresAt *time.Time            `json:"expiresAt"`
}
