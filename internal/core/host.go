package core

import (
	"net"
	"strings"
)

type HostKind int

const (
	HostUnscoped HostKind = iota // 主網域或 www：不綁定任何租戶
	HostAdmin                    // admin 子網域：控制平面
	HostTenant                   // 租戶子網域
)

// HostScope 主機名稱解析結果
type HostScope struct {
	Kind HostKind
	Key  string // 僅 HostTenant 時有值，已正規化為小寫
}

// ResolveHost 由 Host 標頭推導租戶範圍。純函式、不做任何 I/O；
// 格式異常一律視為 Unscoped。
func ResolveHost(host string) HostScope {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return HostScope{Kind: HostUnscoped}
	}

	label, rest, found := strings.Cut(host, ".")
	if !found || label == "" || rest == "" {
		// 無子網域（例如 example.com 以外的裸主機）
		return HostScope{Kind: HostUnscoped}
	}

	switch label {
	case "admin":
		return HostScope{Kind: HostAdmin}
	case "www":
		return HostScope{Kind: HostUnscoped}
	default:
		return HostScope{Kind: HostTenant, Key: label}
	}
}
