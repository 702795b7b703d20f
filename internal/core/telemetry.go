package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest        TraceSpanName = "http_request"
	SpanLoggerMiddleware   TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware     TraceSpanName = "cors_middleware"
	SpanResponseMiddleware TraceSpanName = "response_middleware"
	SpanTenantMiddleware   TraceSpanName = "tenant_middleware"
	SpanAuthMiddleware     TraceSpanName = "auth_middleware"
	SpanRateLimitMiddleware TraceSpanName = "ratelimit_middleware"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal    MetricName = "requests_total"
	MetricHttpRequestDuration  MetricName = "request_duration_seconds"
	MetricTenantConnections    MetricName = "tenant_connections"
	MetricTenantConnectTotal   MetricName = "tenant_connect_total"
	MetricTenantEvictionsTotal MetricName = "tenant_evictions_total"
	MetricRateLimitTotal       MetricName = "rate_limited_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
)

type TraceHttpServerMeta struct {
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
	UrlPath           string `trace:"url.path"`
	UrlScheme         string `trace:"url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanTraceID       string `trace:"span.trace_id"`
}

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

type TraceTenantMiddlewareMeta struct {
	Host      string `trace:"tenant.host"`
	TenantKey string `trace:"tenant.key"`
	Scope     string `trace:"tenant.scope"`
	Status    string `trace:"tenant.status"`
}

type TraceAuthMiddlewareMeta struct {
	UserID    string `trace:"auth.user_id"`
	TenantKey string `trace:"auth.tenant_key"`
	Role      string `trace:"auth.role"`
	Status    string `trace:"auth.status"`
}

type TraceRateLimitMiddlewareMeta struct {
	ClientIP   string `trace:"ratelimit.client_ip"`
	Limit      int    `trace:"ratelimit.limit"`
	Remaining  int    `trace:"ratelimit.remaining"`
	TTLSeconds int64  `trace:"ratelimit.ttl_seconds"`
	Blocked    bool   `trace:"ratelimit.blocked"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.duration_ms"`
	Data       string  `trace:"response.data"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.duration_ms"`
	Message    string  `trace:"panic.message"`
	Stack      string  `trace:"panic.stack"`
	Status     int     `trace:"http.status"`
}

type TraceRegistryMeta struct {
	TenantKey  string `trace:"registry.tenant_key"`
	Generation uint64 `trace:"registry.generation"`
	Status     string `trace:"registry.status"`
}

type TraceMaintenanceMeta struct {
	TenantKey   string `trace:"maintenance.tenant_key"`
	Op          string `trace:"maintenance.op"`
	Collections int    `trace:"maintenance.collections"`
	Documents   int64  `trace:"maintenance.documents"`
}

type TraceAdminTenantListMeta struct {
	Page        int64  `trace:"list.page"`
	Size        int64  `trace:"list.size"`
	Status      string `trace:"list.status,omitempty"`
	ResultCount int    `trace:"result.count,omitempty"`
}
