package service

import (
	"context"
	"time"

	"billstack/internal/core"
	"billstack/internal/database/tenant"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Snapshot 單一租戶資料庫的完整備份：集合名稱 → 文件陣列。
// 文件用 bson.M 保留原始形狀，不綁模型版本。
type Snapshot struct {
	TenantKey   string              `json:"tenantKey" bson:"tenantKey"`
	Timestamp   time.Time           `json:"timestamp" bson:"timestamp"`
	Collections map[string][]bson.M `json:"collections" bson:"collections"`
}

// RestoreResult 還原結果；部分失敗時 Completed 列出已完成的集合
type RestoreResult struct {
	TenantKey string   `json:"tenantKey"`
	Completed []string `json:"completed"`
	Restored  int64    `json:"restored"`
}

type TenantHealth struct {
	TenantKey   string   `json:"tenantKey"`
	Status      string   `json:"status"`
	Collections []string `json:"collections"`
}

type RegistryEntry struct {
	TenantKey string `json:"tenantKey"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	LastUsed  string `json:"lastUsed"`
}

type MaintenanceService struct {
	trace    *telemetry.Trace
	logger   *zap.Logger
	registry *tenant.Registry
}

func NewMaintenanceService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	registry *tenant.Registry,
) *MaintenanceService {
	return &MaintenanceService{
		trace:    trace,
		logger:   logger,
		registry: registry,
	}
}

// HealthCheck ping 租戶資料庫並列出集合
func (s *MaintenanceService) HealthCheck(
	ctx context.Context,
	tenantKey string,
) (_ *TenantHealth, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	handle, err := s.registry.Acquire(ctx, tenantKey)
	if err != nil {
		return nil, err
	}
	if err := handle.Conn.Ping(ctx); err != nil {
		return nil, cErr.ConnectionFailed(err.Error())
	}
	names, err := handle.Conn.CollectionNames(ctx)
	if err != nil {
		return nil, cErr.DatabaseError(err.Error())
	}
	return &TenantHealth{
		TenantKey:   tenantKey,
		Status:      "ok",
		Collections: names,
	}, nil
}

// Backup 全集合快照。文件逐集合撈出，租戶小型資料庫夠用；
// 超大租戶要另外走原生 dump 工具。
func (s *MaintenanceService) Backup(
	ctx context.Context,
	tenantKey string,
) (_ *Snapshot, returnedError error) {

	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	handle, err := s.registry.Acquire(ctx, tenantKey)
	if err != nil {
		return nil, err
	}
	names, err := handle.Conn.CollectionNames(ctx)
	if err != nil {
		return nil, cErr.DatabaseError(err.Error())
	}

	snapshot := &Snapshot{
		TenantKey:   tenantKey,
		Timestamp:   time.Now().UTC(),
		Collections: make(map[string][]bson.M, len(names)),
	}
	var total int64
	for _, name := range names {
		var documents []bson.M
		if err := handle.Conn.Collection(name).FindAll(ctx, nil, &documents); err != nil {
			return nil, cErr.DatabaseError(err.Error())
		}
		if documents == nil {
			documents = []bson.M{}
		}
		snapshot.Collections[name] = documents
		total += int64(len(documents))
	}

	s.trace.ApplyTraceAttributes(span, &core.TraceMaintenanceMeta{
		TenantKey:   tenantKey,
		Op:          "backup",
		Collections: len(snapshot.Collections),
		Documents:   total,
	})
	s.logger.Info("tenant backup completed",
		zap.String("tenantKey", tenantKey),
		zap.Int("collections", len(snapshot.Collections)),
		zap.Int64("documents", total),
	)
	return snapshot, nil
}

// Restore 以快照覆蓋現有資料：先清掉所有活集合，再灌回快照內容。
// 中途失敗也回傳已完成清單，讓呼叫端知道資料庫停在什麼狀態。
func (s *MaintenanceService) Restore(
	ctx context.Context,
	tenantKey string,
	snapshot *Snapshot,
) (_ *RestoreResult, returnedError error) {

	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if snapshot == nil || len(snapshot.Collections) == 0 {
		return nil, cErr.BadRequestBody("snapshot is empty")
	}

	handle, err := s.registry.Acquire(ctx, tenantKey)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{TenantKey: tenantKey, Completed: []string{}}

	// 快照外的活集合也要清，否則還原後殘留新資料
	liveNames, err := handle.Conn.CollectionNames(ctx)
	if err != nil {
		return result, cErr.DatabaseError(err.Error())
	}
	for _, name := range liveNames {
		if _, exists := snapshot.Collections[name]; exists {
			continue
		}
		if _, err := handle.Conn.Collection(name).DeleteAll(ctx); err != nil {
			return result, cErr.DatabaseError(err.Error())
		}
	}

	for name, documents := range snapshot.Collections {
		collection := handle.Conn.Collection(name)
		if _, err := collection.DeleteAll(ctx); err != nil {
			return result, cErr.DatabaseError(err.Error())
		}
		if len(documents) > 0 {
			payload := make([]any, len(documents))
			for i, document := range documents {
				payload[i] = document
			}
			inserted, err := collection.InsertMany(ctx, payload)
			if err != nil {
				return result, cErr.DatabaseError(err.Error())
			}
			result.Restored += inserted
		}
		result.Completed = append(result.Completed, name)
	}

	s.trace.ApplyTraceAttributes(span, &core.TraceMaintenanceMeta{
		TenantKey:   tenantKey,
		Op:          "restore",
		Collections: len(result.Completed),
		Documents:   result.Restored,
	})
	s.logger.Info("tenant restore completed",
		zap.String("tenantKey", tenantKey),
		zap.Int64("documents", result.Restored),
	)
	return result, nil
}

// Stats 租戶資料庫儲存統計（dbStats）
func (s *MaintenanceService) Stats(
	ctx context.Context,
	tenantKey string,
) (_ *tenant.Stats, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	handle, err := s.registry.Acquire(ctx, tenantKey)
	if err != nil {
		return nil, err
	}
	stats, err := handle.Conn.Stats(ctx)
	if err != nil {
		return nil, cErr.DatabaseError(err.Error())
	}
	return stats, nil
}

// ReleaseConnection 手動踢掉某租戶的連線（維運用）
func (s *MaintenanceService) ReleaseConnection(
	ctx context.Context,
	tenantKey string,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()
	return s.registry.Release(ctx, tenantKey)
}

// RegistryOverview 註冊表現況：admin 監控頁用
func (s *MaintenanceService) RegistryOverview(ctx context.Context) []RegistryEntry {
	_, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	keys := s.registry.Keys()
	entries := make([]RegistryEntry, 0, len(keys))
	for _, key := range keys {
		handle, ok := s.registry.Peek(key)
		if !ok {
			continue
		}
		entries = append(entries, RegistryEntry{
			TenantKey: key,
			Status:    handle.Status().String(),
			CreatedAt: handle.CreatedAt().UTC().Format(time.RFC3339),
			LastUsed:  handle.LastUsed().UTC().Format(time.RFC3339),
		})
	}
	return entries
}
