package core

import "github.com/golang-jwt/jwt/v4"

// Claims 登入/註冊簽發的 JWT 內容
type Claims struct {
	UserID    string `json:"userId"`
	TenantKey string `json:"tenantId"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}
