package tenant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"billstack/config"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"go.uber.org/zap"
)

type fakeConn struct {
	closed atomic.Int32
}

func (c *fakeConn) Ping(ctx context.Context) error                      { return nil }
func (c *fakeConn) CollectionNames(ctx context.Context) ([]string, error) { return nil, nil }
func (c *fakeConn) Collection(name string) Collection                   { return nil }
func (c *fakeConn) Stats(ctx context.Context) (*Stats, error)           { return &Stats{}, nil }
func (c *fakeConn) Close(ctx context.Context) error {
	c.closed.Add(1)
	return nil
}

type fakeConnector struct {
	mu       sync.Mutex
	connects int
	failures int          // 前 N 次 Connect 回錯誤
	gate     chan struct{} // 設定時 Connect 會阻塞到 gate 關閉
	events   []EventFunc
	conns    []*fakeConn
}

func (f *fakeConnector) Connect(ctx context.Context, dbName string, onEvent EventFunc) (Conn, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connects <= f.failures {
		return nil, errors.New("connect refused")
	}
	f.events = append(f.events, onEvent)
	conn := &fakeConn{}
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeConnector) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func (f *fakeConnector) lastEvent() EventFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return f.events[len(f.events)-1]
}

func newTestRegistry(t *testing.T, connector Connector) *Registry {
	t.Helper()
	trace, err := telemetry.NewTrace(nil)
	if err != nil {
		t.Fatalf("NewTrace: %v", err)
	}
	registry, cleanup := NewRegistry(
		zap.NewNop(),
		&config.Configuration{},
		connector,
		telemetry.NewMetric(nil),
		trace,
	)
	t.Cleanup(cleanup)
	return registry
}

func TestValidateKey(t *testing.T) {
	valid := []string{"acme", "acme-corp", "a1", "tenant-42"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Fatalf("key %q should be valid: %v", key, err)
		}
	}

	invalid := []string{"", "a", "Acme", "-acme", "acme corp", "acme_corp", "admin", "www", "api", "app", "main"}
	for _, key := range invalid {
		if err := ValidateKey(key); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}

func TestAcquireSharesSingleEstablishment(t *testing.T) {
	connector := &fakeConnector{gate: make(chan struct{})}
	registry := newTestRegistry(t, connector)

	const waiters = 8
	handles := make([]*Handle, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			handle, err := registry.Acquire(context.Background(), "acme")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			handles[index] = handle
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(connector.gate)
	wg.Wait()

	if got := connector.connectCount(); got != 1 {
		t.Fatalf("expected a single Connect, got %d", got)
	}
	for _, handle := range handles {
		if handle != handles[0] {
			t.Fatal("all waiters should share the same handle")
		}
	}
	if handles[0].Status() != StatusReady {
		t.Fatalf("expected ready handle, got %s", handles[0].Status())
	}
	if registry.Len() != 1 {
		t.Fatalf("expected 1 registry entry, got %d", registry.Len())
	}
}

func TestAcquireFailureIsNotCached(t *testing.T) {
	connector := &fakeConnector{failures: 1}
	registry := newTestRegistry(t, connector)

	if _, err := registry.Acquire(context.Background(), "acme"); err == nil {
		t.Fatal("first Acquire should fail")
	}
	if registry.Len() != 0 {
		t.Fatal("failed establishment must not be cached")
	}

	handle, err := registry.Acquire(context.Background(), "acme")
	if err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if handle.Status() != StatusReady {
		t.Fatalf("expected ready handle, got %s", handle.Status())
	}
	if got := connector.connectCount(); got != 2 {
		t.Fatalf("expected 2 Connect attempts, got %d", got)
	}
}

func TestAcquireRejectsInvalidKey(t *testing.T) {
	registry := newTestRegistry(t, &fakeConnector{})
	for _, key := range []string{"Bad Key", "admin", ""} {
		_, err := registry.Acquire(context.Background(), key)
		if err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
		appErr, ok := err.(*cErr.Error)
		if !ok {
			t.Fatalf("expected typed error, got %T", err)
		}
		if appErr.ErrorCode() != cErr.TENANT_KEY_INVALID {
			t.Fatalf("expected TENANT_KEY_INVALID, got %d", appErr.ErrorCode())
		}
	}
}

func TestDisconnectEvictsAndReconnects(t *testing.T) {
	connector := &fakeConnector{}
	registry := newTestRegistry(t, connector)

	first, err := registry.Acquire(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	connector.lastEvent()(EventDisconnected)
	waitFor(t, func() bool { return registry.Len() == 0 })
	if first.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", first.Status())
	}

	second, err := registry.Acquire(context.Background(), "acme")
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}
	if second == first {
		t.Fatal("expected a fresh handle after disconnect")
	}
	if second.Generation() <= first.Generation() {
		t.Fatal("new handle must carry a newer generation")
	}
}

func TestStaleDisconnectEventIsNoOp(t *testing.T) {
	connector := &fakeConnector{}
	registry := newTestRegistry(t, connector)

	if _, err := registry.Acquire(context.Background(), "acme"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	staleEvent := connector.lastEvent()

	staleEvent(EventDisconnected)
	waitFor(t, func() bool { return registry.Len() == 0 })

	replacement, err := registry.Acquire(context.Background(), "acme")
	if err != nil {
		t.Fatalf("re-Acquire: %v", err)
	}

	// 舊一代的事件再進來：新連線不受影響
	staleEvent(EventDisconnected)
	time.Sleep(50 * time.Millisecond)

	if registry.Len() != 1 {
		t.Fatalf("stale event must not evict, got %d entries", registry.Len())
	}
	if replacement.Status() != StatusReady {
		t.Fatalf("expected ready, got %s", replacement.Status())
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	connector := &fakeConnector{}
	registry := newTestRegistry(t, connector)

	if _, err := registry.Acquire(context.Background(), "acme"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := registry.Release(context.Background(), "acme"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := registry.Release(context.Background(), "acme"); err != nil {
		t.Fatalf("second Release should be a no-op: %v", err)
	}
	if got := connector.conns[0].closed.Load(); got != 1 {
		t.Fatalf("connection should be closed exactly once, got %d", got)
	}
}

func TestReleaseAllClosesEverything(t *testing.T) {
	connector := &fakeConnector{}
	registry := newTestRegistry(t, connector)

	for _, key := range []string{"acme", "globex", "initech"} {
		if _, err := registry.Acquire(context.Background(), key); err != nil {
			t.Fatalf("Acquire %s: %v", key, err)
		}
	}
	if err := registry.ReleaseAll(context.Background()); err != nil {
		t.Fatalf("ReleaseAll: %v", err)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", registry.Len())
	}
	for i, conn := range connector.conns {
		if conn.closed.Load() != 1 {
			t.Fatalf("conn %d not closed", i)
		}
	}

	// 關機後不再受理
	if _, err := registry.Acquire(context.Background(), "acme"); err == nil {
		t.Fatal("Acquire after shutdown should fail")
	}
}

func TestReleaseAllDuringEstablishment(t *testing.T) {
	connector := &fakeConnector{gate: make(chan struct{})}
	registry := newTestRegistry(t, connector)

	errCh := make(chan error, 1)
	go func() {
		_, err := registry.Acquire(context.Background(), "acme")
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)

	if err := registry.ReleaseAll(context.Background()); err != nil {
		t.Fatalf("ReleaseAll: %v", err)
	}
	close(connector.gate)

	// 建立在關機後才完成：不得進註冊表，等待者收到錯誤
	if err := <-errCh; err == nil {
		t.Fatal("establishment finishing after shutdown should fail")
	}
	if registry.Len() != 0 {
		t.Fatalf("registry not empty after ReleaseAll: %d entries", registry.Len())
	}
	waitFor(t, func() bool {
		connector.mu.Lock()
		defer connector.mu.Unlock()
		return len(connector.conns) == 1 && connector.conns[0].closed.Load() == 1
	})
}

func TestAcquireCanceledWaiterLeavesCreationRunning(t *testing.T) {
	connector := &fakeConnector{gate: make(chan struct{})}
	registry := newTestRegistry(t, connector)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := registry.Acquire(ctx, "acme")
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-errCh; err == nil {
		t.Fatal("canceled waiter should get an error")
	}

	// 建立仍在背景完成，之後的取用直接命中
	close(connector.gate)
	waitFor(t, func() bool { return registry.Len() == 1 })

	handle, err := registry.Acquire(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Acquire after background completion: %v", err)
	}
	if handle.Status() != StatusReady {
		t.Fatalf("expected ready handle, got %s", handle.Status())
	}
	if got := connector.connectCount(); got != 1 {
		t.Fatalf("expected a single Connect, got %d", got)
	}
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
