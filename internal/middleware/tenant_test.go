package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"billstack/internal/core"
	"billstack/internal/database/tenant"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// stubHandles 以固定結果頂替連線註冊表
type stubHandles struct {
	handle *tenant.Handle
	err    error
	keys   []string
}

func (s *stubHandles) Acquire(ctx context.Context, tenantKey string) (*tenant.Handle, error) {
	s.keys = append(s.keys, tenantKey)
	if s.err != nil {
		return nil, s.err
	}
	return s.handle, nil
}

func newTestTenantContext(t *testing.T, handles *stubHandles) *TenantContext {
	t.Helper()
	trace, err := telemetry.NewTrace(nil)
	if err != nil {
		t.Fatalf("NewTrace: %v", err)
	}
	if handles == nil {
		handles = &stubHandles{handle: &tenant.Handle{TenantKey: "stub"}}
	}
	return NewTenantContext(trace, handles)
}

func performRequest(router *gin.Engine, host string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Host = host
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestTenantContextSetsTenantKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantContext := newTestTenantContext(t, nil)

	var seenKey string
	var reached bool
	router := gin.New()
	router.Use(tenantContext.Handler())
	router.GET("/probe", func(c *gin.Context) {
		reached = true
		seenKey = c.GetString(core.ContextTenantKey)
		c.Status(http.StatusOK)
	})

	performRequest(router, "acme.billstack.io")
	if !reached {
		t.Fatal("handler should run for a tenant host")
	}
	if seenKey != "acme" {
		t.Fatalf("expected tenant key acme, got %q", seenKey)
	}
}

func TestTenantContextLeavesUnscopedHostAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantContext := newTestTenantContext(t, nil)

	var seenKey string
	router := gin.New()
	router.Use(tenantContext.Handler())
	router.GET("/probe", func(c *gin.Context) {
		seenKey = c.GetString(core.ContextTenantKey)
		c.Status(http.StatusOK)
	})

	performRequest(router, "www.billstack.io")
	if seenKey != "" {
		t.Fatalf("unscoped host must not set a tenant key, got %q", seenKey)
	}
}

func TestTenantContextAttachesHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handles := &stubHandles{handle: &tenant.Handle{TenantKey: "acme"}}
	tenantContext := newTestTenantContext(t, handles)

	var seenHandle *tenant.Handle
	router := gin.New()
	router.Use(tenantContext.Handler())
	router.GET("/probe", func(c *gin.Context) {
		if raw, ok := c.Get(core.ContextTenantHandle); ok {
			seenHandle, _ = raw.(*tenant.Handle)
		}
		c.Status(http.StatusOK)
	})

	performRequest(router, "acme.billstack.io")
	if seenHandle != handles.handle {
		t.Fatal("tenant host should carry the acquired handle in the context")
	}
	if len(handles.keys) != 1 || handles.keys[0] != "acme" {
		t.Fatalf("expected a single Acquire for acme, got %v", handles.keys)
	}
}

func TestTenantContextConnectionFailureShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handles := &stubHandles{err: cErr.ConnectionFailed("tenant database unreachable")}
	tenantContext := newTestTenantContext(t, handles)

	var reached bool
	var captured error
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			captured = c.Errors.Last().Err
		}
	})
	router.Use(tenantContext.Handler())
	router.GET("/probe", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	performRequest(router, "acme.billstack.io")
	if reached {
		t.Fatal("handler must not run when the tenant connection cannot be acquired")
	}
	appErr, ok := captured.(*cErr.Error)
	if !ok {
		t.Fatalf("expected typed error, got %T", captured)
	}
	if appErr.ErrorCode() != cErr.CONNECTION_FAILED {
		t.Fatalf("expected CONNECTION_FAILED, got %d", appErr.ErrorCode())
	}
}

func TestRequireTenantHostBlocksAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantContext := newTestTenantContext(t, nil)

	var reached bool
	router := gin.New()
	router.Use(tenantContext.Handler(), tenantContext.RequireTenantHost())
	router.GET("/probe", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	performRequest(router, "admin.billstack.io")
	if reached {
		t.Fatal("admin host must not reach tenant routes")
	}

	performRequest(router, "acme.billstack.io")
	if !reached {
		t.Fatal("tenant host should reach tenant routes")
	}
}

func TestRequireAdminHostBlocksTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantContext := newTestTenantContext(t, nil)

	var reached bool
	router := gin.New()
	router.Use(tenantContext.Handler(), tenantContext.RequireAdminHost())
	router.GET("/probe", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	performRequest(router, "acme.billstack.io")
	if reached {
		t.Fatal("tenant host must not reach admin routes")
	}

	performRequest(router, "admin.billstack.io")
	if !reached {
		t.Fatal("admin host should reach admin routes")
	}
}
