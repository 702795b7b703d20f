package service

import (
	"context"
	"errors"
	"time"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/mongodb/repository"
	"billstack/internal/database/tenant"
	tenantRepo "billstack/internal/database/tenant/repository"
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TenantsService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	tenantsRepo *repository.TenantsRepository
	registry    *tenant.Registry
	auth        *AuthService
}

func NewTenantsService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	tenantsRepo *repository.TenantsRepository,
	registry *tenant.Registry,
	auth *AuthService,
) *TenantsService {
	return &TenantsService{
		trace:       trace,
		logger:      logger,
		tenantsRepo: tenantsRepo,
		registry:    registry,
		auth:        auth,
	}
}

// Register 開新租戶：目錄建檔 → 開租戶資料庫連線 → 建 owner 帳號 → 簽 token。
// 租戶資料庫本身不用預建，首次寫入時由 MongoDB 隱式建立。
func (s *TenantsService) Register(
	ctx context.Context,
	registerDto *dto.RegisterTenantDto,
) (_ *dto.RegisterTenantResponseDto, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if err := tenant.ValidateKey(registerDto.Subdomain); err != nil {
		return nil, err
	}
	exists, err := s.tenantsRepo.ExistsBySubdomainOrEmail(ctx, registerDto.Subdomain, registerDto.Email)
	if err != nil {
		return nil, cErr.DatabaseError("database ExistsBySubdomainOrEmail error")
	}
	if exists {
		return nil, cErr.TenantKeyTaken("subdomain or email already registered")
	}

	plan := registerDto.Plan
	if plan == "" {
		plan = core.PlanBasic
	}
	now := time.Now().UTC()
	tenantDoc := &model.Tenant{
		BusinessName: registerDto.BusinessName,
		Subdomain:    registerDto.Subdomain,
		Email:        registerDto.Email,
		Phone:        registerDto.Phone,
		GSTIN:        registerDto.GSTIN,
		State:        registerDto.State,
		Address:      registerDto.Address,
		IsActive:     true,
		Subscription: model.TenantSubscription{
			Plan:      plan,
			Status:    core.SubscriptionTrial,
			Price:     core.PlanPrices[plan],
			StartedAt: now,
		},
		Limits: model.DefaultLimits(plan),
		Usage:  model.TenantUsage{Users: 1},
	}
	created, err := s.tenantsRepo.Create(ctx, tenantDoc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, cErr.TenantKeyTaken("subdomain or email already registered")
		}
		return nil, cErr.DatabaseError("database Create tenant error")
	}

	handle, err := s.registry.Acquire(ctx, created.Subdomain)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerDto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, cErr.InternalServer("failed to hash password")
	}
	owner := &model.TenantUser{
		Name:        registerDto.OwnerName,
		Email:       registerDto.Email,
		Password:    string(passwordHash),
		Role:        core.RoleOwner,
		Permissions: core.AllPermissions,
		Active:      true,
	}
	users := tenantRepo.NewUserRepository(handle)
	ownerID, err := users.Create(ctx, owner)
	if err != nil {
		return nil, cErr.DatabaseError("database Create owner error")
	}

	token, err := s.auth.SignToken(ownerID, created.Subdomain, core.RoleOwner)
	if err != nil {
		return nil, cErr.InternalServer("failed to sign token")
	}

	s.logger.Info("tenant registered",
		zap.String("subdomain", created.Subdomain),
		zap.String("plan", string(plan)),
	)
	return &dto.RegisterTenantResponseDto{
		TenantID:  created.ID.Hex(),
		Subdomain: created.Subdomain,
		Token:     token,
	}, nil
}

// Dashboard 平台儀表板彙總
func (s *TenantsService) Dashboard(ctx context.Context) (_ *repository.DashboardStats, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	stats, err := s.tenantsRepo.Dashboard(ctx)
	if err != nil {
		return nil, cErr.DatabaseError("database Dashboard error")
	}
	return stats, nil
}

// List 分頁列出租戶，可依訂閱狀態過濾
func (s *TenantsService) List(
	ctx context.Context,
	listDto *dto.ListTenantsDto,
) (_ []*dto.TenantResponseDto, _ int64, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	size := listDto.Size
	if size == 0 {
		size = 20
	}
	filter := bson.M{}
	if listDto.Status != "" {
		filter["subscription.status"] = listDto.Status
	}
	tenants, err := s.tenantsRepo.List(ctx, core.ListOptions{Filter: filter, Page: listDto.Page, Size: size})
	if err != nil {
		return nil, 0, cErr.DatabaseError("database List tenants error")
	}
	total, err := s.tenantsRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, cErr.DatabaseError("database Count tenants error")
	}

	responses := make([]*dto.TenantResponseDto, len(tenants))
	for i, t := range tenants {
		responses[i] = modelToTenantResponseDto(t)
	}
	return responses, total, nil
}

// GetDetail 單一租戶完整檢視：目錄文件 + 各集合文件數 + 連線現況。
// 集合計數走租戶資料庫，需要時才建連線。
func (s *TenantsService) GetDetail(
	ctx context.Context,
	tenantID primitive.ObjectID,
) (_ *dto.TenantDetailResponseDto, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	tenantDoc, err := s.tenantsRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("tenant not found")
		}
		return nil, cErr.DatabaseError("database GetByID tenant error")
	}

	detail := &dto.TenantDetailResponseDto{
		TenantResponseDto: *modelToTenantResponseDto(tenantDoc),
		Phone:             tenantDoc.Phone,
		GSTIN:             tenantDoc.GSTIN,
		Address:           tenantDoc.Address,
		ConnectionStatus:  tenant.StatusUninitialized.String(),
	}
	if handle, ok := s.registry.Peek(tenantDoc.Subdomain); ok {
		detail.ConnectionStatus = handle.Status().String()
	}

	handle, err := s.registry.Acquire(ctx, tenantDoc.Subdomain)
	if err != nil {
		// 連不上仍回目錄資訊，集合計數留空
		return detail, nil
	}
	detail.ConnectionStatus = handle.Status().String()
	counts := map[string]int64{}
	for _, name := range []core.MongoCollection{
		core.TenantCollectionUsers,
		core.TenantCollectionCustomers,
		core.TenantCollectionProducts,
		core.TenantCollectionInvoices,
	} {
		count, countError := handle.Collection(name).Count(ctx, nil)
		if countError != nil {
			continue
		}
		counts[string(name)] = count
	}
	detail.CollectionCounts = counts
	return detail, nil
}

// UpdateStatus 切換訂閱狀態；停權或停用時立刻把活連線踢出註冊表
func (s *TenantsService) UpdateStatus(
	ctx context.Context,
	tenantID primitive.ObjectID,
	status core.SubscriptionStatus,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	tenantDoc, err := s.tenantsRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("tenant not found")
		}
		return cErr.DatabaseError("database GetByID tenant error")
	}

	matched, err := s.tenantsRepo.UpdateByID(ctx, tenantID, bson.M{"subscription.status": status})
	if err != nil {
		return cErr.DatabaseError("database UpdateByID tenant error")
	}
	if matched == 0 {
		return cErr.NotFound("tenant not found")
	}

	if status == core.SubscriptionSuspended || status == core.SubscriptionInactive {
		if err := s.registry.Release(ctx, tenantDoc.Subdomain); err != nil {
			s.logger.Warn("failed to release connection on status change",
				zap.String("subdomain", tenantDoc.Subdomain),
				zap.Error(err),
			)
		}
	}
	return nil
}

// SetActivation 平台層啟用/停用租戶（軟刪除）；停用時立刻把活連線踢出註冊表
func (s *TenantsService) SetActivation(
	ctx context.Context,
	tenantID primitive.ObjectID,
	active bool,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	tenantDoc, err := s.tenantsRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("tenant not found")
		}
		return cErr.DatabaseError("database GetByID tenant error")
	}

	matched, err := s.tenantsRepo.UpdateByID(ctx, tenantID, bson.M{"isActive": active})
	if err != nil {
		return cErr.DatabaseError("database UpdateByID tenant error")
	}
	if matched == 0 {
		return cErr.NotFound("tenant not found")
	}

	if !active {
		if err := s.registry.Release(ctx, tenantDoc.Subdomain); err != nil {
			s.logger.Warn("failed to release connection on deactivation",
				zap.String("subdomain", tenantDoc.Subdomain),
				zap.Error(err),
			)
		}
	}
	return nil
}

// UpdateSubscription 換方案：定價與用量上限跟著方案走
func (s *TenantsService) UpdateSubscription(
	ctx context.Context,
	tenantID primitive.ObjectID,
	subscriptionDto *dto.UpdateTenantSubscriptionDto,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	limits := model.DefaultLimits(subscriptionDto.Plan)
	setFields := bson.M{
		"subscription.plan":  subscriptionDto.Plan,
		"subscription.price": core.PlanPrices[subscriptionDto.Plan],
		"limits":             limits,
	}
	if subscriptionDto.ExpiresAt != nil {
		setFields["subscription.expiresAt"] = subscriptionDto.ExpiresAt.UTC()
	}
	matched, err := s.tenantsRepo.UpdateByID(ctx, tenantID, setFields)
	if err != nil {
		return cErr.DatabaseError("database UpdateByID tenant error")
	}
	if matched == 0 {
		return cErr.NotFound("tenant not found")
	}
	return nil
}

// ResetMonthlyUsage 月初排程：全租戶當月發票計數歸零
func (s *TenantsService) ResetMonthlyUsage(ctx context.Context) (returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	modified, err := s.tenantsRepo.ResetMonthlyUsage(ctx)
	if err != nil {
		return cErr.DatabaseError("database ResetMonthlyUsage error")
	}
	s.logger.Info("monthly usage reset", zap.Int64("tenants", modified))
	return nil
}

func modelToTenantResponseDto(tenantDoc *model.Tenant) *dto.TenantResponseDto {
	return &dto.TenantResponseDto{
		ID:           tenantDoc.ID.Hex(),
		BusinessName: tenantDoc.BusinessName,
		Subdomain:    tenantDoc.Subdomain,
		Email:        tenantDoc.Email,
		State:        tenantDoc.State,
		IsActive:     tenantDoc.IsActive,
		Subscription: tenantDoc.Subscription,
		Limits:       tenantDoc.Limits,
		Usage:        tenantDoc.Usage,
		CreatedAt:    tenantDoc.CreatedAt,
	}
}
