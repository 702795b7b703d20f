package dto

import "billstack/internal/core"

type LoginDto struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponseDto struct {
	Token string          `json:"token"`
	User  *core.Principal `json:"user"`
}

type RegisterTenantDto struct {
	BusinessName string                `json:"businessName" binding:"required"`
	Subdomain    string                `json:"subdomain" binding:"required"`
	Email        string                `json:"email" binding:"required,email"`
	Password     string                `json:"password" binding:"required,min=6"`
	OwnerName    string                `json:"ownerName" binding:"required"`
	Phone        string                `json:"phone"`
	GSTIN        string                `json:"gstin"`
	State        string                `json:"state" binding:"required"`
	Address      string                `json:"address"`
	Plan         core.SubscriptionPlan `json:"plan" binding:"omitempty,oneof=basic pro enterprise"`
}

type RegisterTenantResponseDto struct {
	TenantID  string `json:"tenantId"`
	Subdomain string `json:"subdomain"`
	Token     string `json:"token"`
}
