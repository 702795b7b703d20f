package service

import (
	"context"
	"testing"

	"billstack/config"
	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Configuration {
	return &config.Configuration{
		App: config.App{
			JWTSecret:      "unit-test-secret",
			JWTExpireHours: 1,
		},
	}
}

func seedUser(t *testing.T, connector *memConnector, tenantKey string, user *model.TenantUser) {
	t.Helper()
	collection := connector.conn("tenant_" + tenantKey).Collection(string(core.TenantCollectionUsers))
	if _, err := collection.InsertOne(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func activeTenant(key string) *model.Tenant {
	return &model.Tenant{
		ID:        primitive.NewObjectID(),
		Subdomain: key,
		State:     "Karnataka",
		IsActive:  true,
		Subscription: model.TenantSubscription{
			Plan:   core.PlanBasic,
			Status: core.SubscriptionActive,
		},
	}
}

func newTestAuthService(t *testing.T, directory TenantDirectory, connector *memConnector) *AuthService {
	t.Helper()
	registry := newTestRegistry(t, connector)
	return NewAuthService(newTestTrace(t), testConfig(), directory, registry)
}

func assertErrorCode(t *testing.T, err error, wantCode int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr, ok := err.(*cErr.Error)
	if !ok {
		t.Fatalf("expected typed error, got %T: %v", err, err)
	}
	if appErr.ErrorCode() != wantCode {
		t.Fatalf("expected error code %d, got %d (%v)", wantCode, appErr.ErrorCode(), err)
	}
}

func TestSignTokenThenAuthenticate(t *testing.T) {
	connector := newMemConnector()
	userID := primitive.NewObjectID()
	seedUser(t, connector, "acme", &model.TenantUser{
		ID:          userID,
		Name:        "Asha",
		Email:       "asha@acme.example",
		Role:        core.RoleAdmin,
		Permissions: []core.Permission{core.PermissionInvoices},
		Active:      true,
	})
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": activeTenant("acme")}}
	authService := newTestAuthService(t, directory, connector)

	token, err := authService.SignToken(userID.Hex(), "acme", core.RoleAdmin)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	principal, handle, err := authService.Authenticate(context.Background(), token, "acme")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if handle == nil {
		t.Fatal("expected a tenant handle")
	}
	if principal.UserID != userID.Hex() {
		t.Fatalf("expected user %s, got %s", userID.Hex(), principal.UserID)
	}
	if principal.TenantKey != "acme" {
		t.Fatalf("expected tenant acme, got %s", principal.TenantKey)
	}
	if principal.Role != core.RoleAdmin {
		t.Fatalf("expected admin role, got %s", principal.Role)
	}
	if !principal.HasPermission(core.PermissionInvoices) {
		t.Fatal("expected invoices permission on principal")
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{}}
	authService := newTestAuthService(t, directory, newMemConnector())

	_, _, err := authService.Authenticate(context.Background(), "not-a-jwt", "acme")
	assertErrorCode(t, err, cErr.CREDENTIAL_INVALID)
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	connector := newMemConnector()
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": activeTenant("acme")}}
	authService := newTestAuthService(t, directory, connector)

	other := NewAuthService(newTestTrace(t), &config.Configuration{
		App: config.App{JWTSecret: "a-different-secret", JWTExpireHours: 1},
	}, directory, newTestRegistry(t, connector))
	token, err := other.SignToken(primitive.NewObjectID().Hex(), "acme", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, _, err = authService.Authenticate(context.Background(), token, "acme")
	assertErrorCode(t, err, cErr.CREDENTIAL_INVALID)
}

func TestAuthenticateRejectsCrossTenantToken(t *testing.T) {
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{
		"acme":   activeTenant("acme"),
		"globex": activeTenant("globex"),
	}}
	authService := newTestAuthService(t, directory, newMemConnector())

	token, err := authService.SignToken(primitive.NewObjectID().Hex(), "globex", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	// globex 簽的 token 不能打 acme 子網域
	_, _, err = authService.Authenticate(context.Background(), token, "acme")
	assertErrorCode(t, err, cErr.CREDENTIAL_INVALID)
}

func TestAuthenticateSuspendedSubscription(t *testing.T) {
	suspended := activeTenant("acme")
	suspended.Subscription.Status = core.SubscriptionSuspended
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": suspended}}
	authService := newTestAuthService(t, directory, newMemConnector())

	token, err := authService.SignToken(primitive.NewObjectID().Hex(), "acme", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, _, err = authService.Authenticate(context.Background(), token, "acme")
	assertErrorCode(t, err, cErr.SUBSCRIPTION_SUSPENDED)
}

func TestAuthenticateInactiveTenant(t *testing.T) {
	inactive := activeTenant("acme")
	inactive.Subscription.Status = core.SubscriptionInactive
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": inactive}}
	authService := newTestAuthService(t, directory, newMemConnector())

	token, err := authService.SignToken(primitive.NewObjectID().Hex(), "acme", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, _, err = authService.Authenticate(context.Background(), token, "acme")
	assertErrorCode(t, err, cErr.TENANT_UNAVAILABLE)
}

func TestAuthenticateDeactivatedTenant(t *testing.T) {
	deactivated := activeTenant("acme")
	deactivated.IsActive = false
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": deactivated}}
	authService := newTestAuthService(t, directory, newMemConnector())

	token, err := authService.SignToken(primitive.NewObjectID().Hex(), "acme", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	// 軟刪除的租戶連有效訂閱也擋：旗標與訂閱狀態是兩道獨立的閘
	_, _, err = authService.Authenticate(context.Background(), token, "acme")
	assertErrorCode(t, err, cErr.TENANT_UNAVAILABLE)
}

func TestAuthenticateUnknownTenant(t *testing.T) {
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{}}
	authService := newTestAuthService(t, directory, newMemConnector())

	token, err := authService.SignToken(primitive.NewObjectID().Hex(), "ghost", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, _, err = authService.Authenticate(context.Background(), token, "ghost")
	assertErrorCode(t, err, cErr.TENANT_UNAVAILABLE)
}

func TestAuthenticateMissingUser(t *testing.T) {
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": activeTenant("acme")}}
	authService := newTestAuthService(t, directory, newMemConnector())

	token, err := authService.SignToken(primitive.NewObjectID().Hex(), "acme", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, _, err = authService.Authenticate(context.Background(), token, "acme")
	assertErrorCode(t, err, cErr.PRINCIPAL_UNAVAILABLE)
}

func TestAuthenticateDeactivatedUser(t *testing.T) {
	connector := newMemConnector()
	userID := primitive.NewObjectID()
	seedUser(t, connector, "acme", &model.TenantUser{
		ID:     userID,
		Email:  "gone@acme.example",
		Role:   core.RoleUser,
		Active: false,
	})
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": activeTenant("acme")}}
	authService := newTestAuthService(t, directory, connector)

	token, err := authService.SignToken(userID.Hex(), "acme", core.RoleUser)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, _, err = authService.Authenticate(context.Background(), token, "acme")
	assertErrorCode(t, err, cErr.PRINCIPAL_UNAVAILABLE)
}

func TestLoginHappyPath(t *testing.T) {
	connector := newMemConnector()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	userID := primitive.NewObjectID()
	seedUser(t, connector, "acme", &model.TenantUser{
		ID:       userID,
		Name:     "Asha",
		Email:    "asha@acme.example",
		Password: string(hash),
		Role:     core.RoleOwner,
		Active:   true,
	})
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": activeTenant("acme")}}
	authService := newTestAuthService(t, directory, connector)

	response, err := authService.Login(context.Background(), "acme", &dto.LoginDto{
		Email:    "asha@acme.example",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if response.Token == "" {
		t.Fatal("expected a signed token")
	}
	if response.User.UserID != userID.Hex() {
		t.Fatalf("expected user %s, got %s", userID.Hex(), response.User.UserID)
	}

	// 簽回來的 token 可以直接通過驗證
	principal, _, err := authService.Authenticate(context.Background(), response.Token, "acme")
	if err != nil {
		t.Fatalf("Authenticate with login token: %v", err)
	}
	if principal.Role != core.RoleOwner {
		t.Fatalf("expected owner role, got %s", principal.Role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	connector := newMemConnector()
	hash, err := bcrypt.GenerateFromPassword([]byte("right-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	seedUser(t, connector, "acme", &model.TenantUser{
		ID:       primitive.NewObjectID(),
		Email:    "asha@acme.example",
		Password: string(hash),
		Role:     core.RoleUser,
		Active:   true,
	})
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": activeTenant("acme")}}
	authService := newTestAuthService(t, directory, connector)

	_, err = authService.Login(context.Background(), "acme", &dto.LoginDto{
		Email:    "asha@acme.example",
		Password: "wrong-pass",
	})
	assertErrorCode(t, err, cErr.CREDENTIAL_INVALID)
}

func TestLoginUnknownEmailIsUniform(t *testing.T) {
	directory := &fakeDirectory{tenants: map[string]*model.Tenant{"acme": activeTenant("acme")}}
	authService := newTestAuthService(t, directory, newMemConnector())

	// 帳號不存在與密碼錯誤回同一個錯誤碼
	_, err := authService.Login(context.Background(), "acme", &dto.LoginDto{
		Email:    "nobody@acme.example",
		Password: "whatever-pass",
	})
	assertErrorCode(t, err, cErr.CREDENTIAL_INVALID)
}
