package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billstack/config"
	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"
	tenantRepo "billstack/internal/database/tenant/repository"
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	trace     *telemetry.Trace
	conf      *config.Configuration
	directory TenantDirectory
	handles   HandleSource
}

func NewAuthService(
	trace *telemetry.Trace,
	conf *config.Configuration,
	directory TenantDirectory,
	handles HandleSource,
) *AuthService {
	return &AuthService{
		trace:     trace,
		conf:      conf,
		directory: directory,
		handles:   handles,
	}
}

// SignToken 簽發 JWT；預設效期 7 天，可由設定覆寫
func (s *AuthService) SignToken(userID string, tenantKey string, role core.Role) (string, error) {
	expireHours := s.conf.App.JWTExpireHours
	if expireHours <= 0 {
		expireHours = 24 * 7
	}
	now := time.Now()
	claims := core.Claims{
		UserID:    userID,
		TenantKey: tenantKey,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.conf.App.JWTSecret))
}

func (s *AuthService) parseToken(tokenString string) (*core.Claims, error) {
	claims := &core.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.conf.App.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, cErr.CredentialInvalid("token verification failed")
	}
	return claims, nil
}

// loadTenant 目錄查詢 + 啟用旗標 + 訂閱狀態檢查。
// 停用與 suspended 在使用者查詢之前就擋下來，不耗租戶資料庫連線。
func (s *AuthService) loadTenant(ctx context.Context, tenantKey string) (*model.Tenant, error) {
	tenantDoc, err := s.directory.GetBySubdomain(ctx, tenantKey)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.TenantUnavailable(fmt.Sprintf("tenant %q not found", tenantKey))
		}
		return nil, cErr.DatabaseError("database GetBySubdomain error")
	}
	if !tenantDoc.IsActive {
		return nil, cErr.TenantUnavailable(fmt.Sprintf("tenant %q is deactivated", tenantKey))
	}
	switch tenantDoc.Subscription.Status {
	case core.SubscriptionSuspended:
		return nil, cErr.SubscriptionSuspended("subscription is suspended, contact support")
	case core.SubscriptionInactive:
		return nil, cErr.TenantUnavailable(fmt.Sprintf("tenant %q is inactive", tenantKey))
	}
	return tenantDoc, nil
}

// Authenticate 請求驗證全流程：
// 驗 token → 比對 host 租戶 → 訂閱狀態 → 取連線 → 查使用者。
// 任何一步失敗都回型別化錯誤，middleware 直接往外拋。
func (s *AuthService) Authenticate(
	ctx context.Context,
	tokenString string,
	hostTenantKey string,
) (_ *core.Principal, _ *tenant.Handle, returnedError error) {

	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, nil, err
	}
	if hostTenantKey != "" && claims.TenantKey != hostTenantKey {
		// token 是別的租戶簽的，不能跨子網域使用
		return nil, nil, cErr.CredentialInvalid("token does not belong to this tenant")
	}

	tenantDoc, err := s.loadTenant(ctx, claims.TenantKey)
	if err != nil {
		return nil, nil, err
	}

	handle, err := s.handles.Acquire(ctx, tenantDoc.Subdomain)
	if err != nil {
		return nil, nil, err
	}

	users := tenantRepo.NewUserRepository(handle)
	user, err := users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, nil, cErr.PrincipalUnavailable("user no longer exists")
		}
		return nil, nil, cErr.DatabaseError("database GetByID error")
	}
	if !user.Active {
		return nil, nil, cErr.PrincipalUnavailable("user account is deactivated")
	}

	principal := &core.Principal{
		UserID:      user.ID.Hex(),
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: user.Permissions,
		TenantKey:   tenantDoc.Subdomain,
	}
	s.trace.ApplyTraceAttributes(span, &core.TraceAuthMiddlewareMeta{
		UserID:    principal.UserID,
		TenantKey: principal.TenantKey,
		Role:      string(principal.Role),
		Status:    "ok",
	})
	return principal, handle, nil
}

// Login 密碼登入；錯誤一律回 credential-invalid，不洩漏帳號是否存在
func (s *AuthService) Login(
	ctx context.Context,
	tenantKey string,
	loginDto *dto.LoginDto,
) (_ *dto.LoginResponseDto, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	tenantDoc, err := s.loadTenant(ctx, tenantKey)
	if err != nil {
		return nil, err
	}

	handle, err := s.handles.Acquire(ctx, tenantDoc.Subdomain)
	if err != nil {
		return nil, err
	}

	users := tenantRepo.NewUserRepository(handle)
	user, err := users.GetByEmail(ctx, loginDto.Email)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, cErr.CredentialInvalid("invalid email or password")
		}
		return nil, cErr.DatabaseError("database GetByEmail error")
	}
	if !user.Active {
		return nil, cErr.PrincipalUnavailable("user account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginDto.Password)); err != nil {
		return nil, cErr.CredentialInvalid("invalid email or password")
	}

	// 登入紀錄寫失敗不擋登入
	_, _ = users.UpdateLastLogin(ctx, user.ID.Hex(), time.Now())

	token, err := s.SignToken(user.ID.Hex(), tenantDoc.Subdomain, user.Role)
	if err != nil {
		return nil, cErr.InternalServer("failed to sign token")
	}

	return &dto.LoginResponseDto{
		Token: token,
		User: &core.Principal{
			UserID:      user.ID.Hex(),
			Name:        user.Name,
			Email:       user.Email,
			Role:        user.Role,
			Permissions: user.Permissions,
			TenantKey:   tenantDoc.Subdomain,
		},
	}, nil
}
