package tenant

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"billstack/config"
	"billstack/internal/core"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type HandleStatus int32

const (
	StatusUninitialized HandleStatus = iota
	StatusConnecting
	StatusReady
	StatusFailed
	StatusDisconnected
)

func (s HandleStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "uninitialized"
	}
}

// Handle 一條註冊表持有的租戶連線。generation 用來區分同一租戶
// 前後建立的連線：斷線事件帶著它自己那一代的編號回來，
// 若註冊表中已是新一代連線則事件作廢。
type Handle struct {
	TenantKey  string
	DBName     string
	Conn       Conn
	generation uint64
	status     atomic.Int32
	createdAt  time.Time
	lastUsed   atomic.Int64 // unix nano
}

func (h *Handle) Status() HandleStatus {
	return HandleStatus(h.status.Load())
}

func (h *Handle) Generation() uint64 {
	return h.generation
}

func (h *Handle) CreatedAt() time.Time {
	return h.createdAt
}

func (h *Handle) LastUsed() time.Time {
	return time.Unix(0, h.lastUsed.Load())
}

func (h *Handle) touch() {
	h.lastUsed.Store(time.Now().UnixNano())
}

// Collection 以集合名稱取用該租戶資料庫內的集合
func (h *Handle) Collection(name core.MongoCollection) Collection {
	h.touch()
	return h.Conn.Collection(string(name))
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// ValidateKey 租戶識別字規則：小寫英數與連字號、2~63 字元、
// 不可為保留子網域。
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return cErr.TenantKeyInvalid(fmt.Sprintf("tenant key %q is malformed", key))
	}
	for _, reserved := range core.ReservedTenantKeys {
		if key == reserved {
			return cErr.TenantKeyInvalid(fmt.Sprintf("tenant key %q is reserved", key))
		}
	}
	return nil
}

// Registry 租戶資料庫連線註冊表。同一租戶同時間至多一條連線；
// 併發的首次取用由 singleflight 合流成單次建立。
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Handle

	group      singleflight.Group
	generation atomic.Uint64
	closed     atomic.Bool

	connector Connector
	prefix    string
	timeout   time.Duration

	logger *zap.Logger
	metric *telemetry.Metric
	trace  *telemetry.Trace
}

func NewRegistry(
	logger *zap.Logger,
	conf *config.Configuration,
	connector Connector,
	metric *telemetry.Metric,
	trace *telemetry.Trace,
) (*Registry, func()) {
	prefix := conf.MongoDB.TenantPrefix
	if prefix == "" {
		prefix = "tenant_"
	}
	timeout := 10 * time.Second
	if conf.MongoDB.ConnectTimeoutSeconds > 0 {
		timeout = time.Duration(conf.MongoDB.ConnectTimeoutSeconds) * time.Second
	}
	registry := &Registry{
		entries:   make(map[string]*Handle),
		connector: connector,
		prefix:    prefix,
		timeout:   timeout,
		logger:    logger,
		metric:    metric,
		trace:     trace,
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := registry.ReleaseAll(shutdownCtx); err != nil {
			logger.Error("failed to release tenant connections", zap.Error(err))
		}
	}
	return registry, cleanup
}

// DBName 租戶資料庫命名：<prefix><key>
func (r *Registry) DBName(tenantKey string) string {
	return r.prefix + tenantKey
}

// Acquire 取得租戶連線；不存在則建立。同租戶的併發呼叫共享
// 同一次建立；等待者各自受自己的 ctx 取消控制，取消不會中斷
// 建立本身，結果仍會進入註冊表供後續請求使用。
func (r *Registry) Acquire(ctx context.Context, tenantKey string) (*Handle, error) {
	if err := ValidateKey(tenantKey); err != nil {
		return nil, err
	}
	if r.closed.Load() {
		return nil, cErr.ServiceUnavailable("registry is shutting down")
	}

	// 快路徑：已有可用連線
	r.mu.RLock()
	handle, ok := r.entries[tenantKey]
	r.mu.RUnlock()
	if ok && handle.Status() == StatusReady {
		handle.touch()
		return handle, nil
	}

	ch := r.group.DoChan(tenantKey, func() (any, error) {
		return r.establish(tenantKey)
	})

	select {
	case <-ctx.Done():
		// 建立照常在背景完成，只有這個等待者放棄
		return nil, cErr.From(ctx.Err())
	case result := <-ch:
		if result.Err != nil {
			return nil, cErr.From(result.Err)
		}
		handle := result.Val.(*Handle)
		handle.touch()
		return handle, nil
	}
}

// establish 在 singleflight 內執行，同一租戶同時間只會有一個。
// 進入後重查一次快取：可能在排隊期間已有人建好了。
func (r *Registry) establish(tenantKey string) (*Handle, error) {
	r.mu.RLock()
	existing, ok := r.entries[tenantKey]
	r.mu.RUnlock()
	if ok && existing.Status() == StatusReady {
		return existing, nil
	}

	generation := r.generation.Add(1)
	handle := &Handle{
		TenantKey:  tenantKey,
		DBName:     r.DBName(tenantKey),
		generation: generation,
		createdAt:  time.Now(),
	}
	handle.status.Store(int32(StatusConnecting))

	// 與請求者的生命週期脫鉤：請求取消不該拆掉建立到一半的連線
	connectCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	_, span, end := r.trace.WithSpan(connectCtx, "tenant_connect")
	conn, err := r.connector.Connect(connectCtx, handle.DBName, func(kind EventKind) {
		if kind == EventDisconnected {
			r.handleDisconnect(tenantKey, generation)
		}
	})
	r.trace.ApplyTraceAttributes(span, &core.TraceRegistryMeta{
		TenantKey:  tenantKey,
		Generation: generation,
		Status:     handle.Status().String(),
	})
	end(err)

	if err != nil {
		handle.status.Store(int32(StatusFailed))
		if r.metric.TenantConnectTotal != nil {
			r.metric.TenantConnectTotal.WithLabelValues("fail").Inc()
		}
		r.logger.Error("tenant connection failed",
			zap.String("tenantKey", tenantKey),
			zap.Uint64("generation", generation),
			zap.Error(err),
		)
		// 失敗不進註冊表，下一次 Acquire 會重新嘗試
		return nil, cErr.ConnectionFailed(err.Error())
	}

	handle.Conn = conn
	handle.status.Store(int32(StatusReady))

	r.mu.Lock()
	if r.closed.Load() {
		// ReleaseAll 已清場，晚到的建立不得再進註冊表
		r.mu.Unlock()
		handle.status.Store(int32(StatusDisconnected))
		r.closeConn(handle, "shutdown")
		return nil, cErr.ServiceUnavailable("registry is shutting down")
	}
	stale := r.entries[tenantKey]
	r.entries[tenantKey] = handle
	r.mu.Unlock()

	if stale != nil && stale.Conn != nil {
		// 不應該發生（singleflight 保證單一建立者），保底收掉舊連線
		go r.closeConn(stale, "replaced")
	}

	if r.metric.TenantConnectTotal != nil {
		r.metric.TenantConnectTotal.WithLabelValues("ok").Inc()
	}
	if r.metric.TenantConnections != nil {
		r.metric.TenantConnections.Inc()
	}
	r.logger.Info("tenant connection established",
		zap.String("tenantKey", tenantKey),
		zap.String("db", handle.DBName),
		zap.Uint64("generation", generation),
	)
	return handle, nil
}

// handleDisconnect 驅動回報斷線。只在事件所屬的那一代連線仍在
// 註冊表時才逐出；晚到的事件碰上新一代連線就是 no-op。
func (r *Registry) handleDisconnect(tenantKey string, generation uint64) {
	r.mu.Lock()
	handle, ok := r.entries[tenantKey]
	if !ok || handle.generation != generation {
		r.mu.Unlock()
		return
	}
	delete(r.entries, tenantKey)
	r.mu.Unlock()

	handle.status.Store(int32(StatusDisconnected))
	if r.metric.TenantConnections != nil {
		r.metric.TenantConnections.Dec()
	}
	if r.metric.TenantEvictionsTotal != nil {
		r.metric.TenantEvictionsTotal.WithLabelValues("disconnect").Inc()
	}
	r.logger.Warn("tenant connection evicted on disconnect",
		zap.String("tenantKey", tenantKey),
		zap.Uint64("generation", generation),
	)
	go r.closeConn(handle, "disconnect")
}

// Release 主動逐出並關閉單一租戶連線；連線不存在時為 no-op。
func (r *Registry) Release(ctx context.Context, tenantKey string) error {
	r.mu.Lock()
	handle, ok := r.entries[tenantKey]
	if ok {
		delete(r.entries, tenantKey)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}

	handle.status.Store(int32(StatusDisconnected))
	if r.metric.TenantConnections != nil {
		r.metric.TenantConnections.Dec()
	}
	if r.metric.TenantEvictionsTotal != nil {
		r.metric.TenantEvictionsTotal.WithLabelValues("release").Inc()
	}
	if err := handle.Conn.Close(ctx); err != nil {
		r.logger.Error("failed to close tenant connection",
			zap.String("tenantKey", tenantKey),
			zap.Error(err),
		)
		return cErr.DatabaseError(err.Error())
	}
	r.logger.Info("tenant connection released", zap.String("tenantKey", tenantKey))
	return nil
}

// ReleaseAll 關閉所有連線（關機流程）。每條連線各自關閉，
// 個別失敗不會中斷其他連線的關閉。
func (r *Registry) ReleaseAll(ctx context.Context) error {
	r.closed.Store(true)

	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.entries))
	for _, handle := range r.entries {
		handles = append(handles, handle)
	}
	r.entries = make(map[string]*Handle)
	r.mu.Unlock()

	eg, egCtx := errgroup.WithContext(ctx)
	for _, handle := range handles {
		handle := handle
		eg.Go(func() error {
			handle.status.Store(int32(StatusDisconnected))
			if r.metric.TenantConnections != nil {
				r.metric.TenantConnections.Dec()
			}
			if r.metric.TenantEvictionsTotal != nil {
				r.metric.TenantEvictionsTotal.WithLabelValues("shutdown").Inc()
			}
			return handle.Conn.Close(egCtx)
		})
	}
	if err := eg.Wait(); err != nil {
		return cErr.DatabaseError(err.Error())
	}
	r.logger.Info("all tenant connections released", zap.Int("count", len(handles)))
	return nil
}

// Keys 目前持有連線的租戶
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	return keys
}

// Len 目前持有的連線數
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Peek 不觸發建立、只回報現況；admin 監控用
func (r *Registry) Peek(tenantKey string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.entries[tenantKey]
	return handle, ok
}

func (r *Registry) closeConn(handle *Handle, reason string) {
	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := handle.Conn.Close(closeCtx); err != nil {
		r.logger.Error("failed to close stale tenant connection",
			zap.String("tenantKey", handle.TenantKey),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}
