package core

import "testing"

func TestResolveHostTenantSubdomain(t *testing.T) {
	scope := ResolveHost("acme.billstack.io")
	if scope.Kind != HostTenant {
		t.Fatalf("expected HostTenant, got %v", scope.Kind)
	}
	if scope.Key != "acme" {
		t.Fatalf("expected key acme, got %s", scope.Key)
	}
}

func TestResolveHostStripsPort(t *testing.T) {
	scope := ResolveHost("acme.billstack.io:3000")
	if scope.Kind != HostTenant || scope.Key != "acme" {
		t.Fatalf("expected tenant acme, got kind=%v key=%s", scope.Kind, scope.Key)
	}
}

func TestResolveHostNormalizesCase(t *testing.T) {
	scope := ResolveHost("ACME.Billstack.IO")
	if scope.Key != "acme" {
		t.Fatalf("expected lowercase key, got %s", scope.Key)
	}
}

func TestResolveHostAdmin(t *testing.T) {
	scope := ResolveHost("admin.billstack.io")
	if scope.Kind != HostAdmin {
		t.Fatalf("expected HostAdmin, got %v", scope.Kind)
	}
	if scope.Key != "" {
		t.Fatalf("admin scope should carry no key, got %s", scope.Key)
	}
}

func TestResolveHostUnscoped(t *testing.T) {
	cases := []string{
		"www.billstack.io",
		"billstack.io",
		"localhost",
		"localhost:3000",
		"",
		".billstack.io",
	}
	for _, host := range cases {
		scope := ResolveHost(host)
		if scope.Kind != HostUnscoped {
			t.Fatalf("host %q: expected HostUnscoped, got %v", host, scope.Kind)
		}
	}
}
