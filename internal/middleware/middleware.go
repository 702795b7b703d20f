package middleware

import (
	"strings"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewCors,
	NewLogger,
	NewRecovery,
	NewTraceEntry,
	NewResponse,
	NewTenantContext,
	NewAuth,
	NewRateLimit,
)

// infraPathPrefixes 基礎設施端點：不做 tracing / 請求記錄 / 回應封裝
var infraPathPrefixes = []string{
	"/swagger",
	"/metrics",
	"/version",
	"/health-check",
	"/health",
}

func isInfraPath(endpoint string) bool {
	for _, prefix := range infraPathPrefixes {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}
