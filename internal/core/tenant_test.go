package core

import "testing"

func TestHasPermissionOwnerBypass(t *testing.T) {
	principal := &Principal{Role: RoleOwner}
	for _, permission := range AllPermissions {
		if !principal.HasPermission(permission) {
			t.Fatalf("owner should hold %s without explicit grant", permission)
		}
	}
}

func TestHasPermissionExplicitGrant(t *testing.T) {
	principal := &Principal{
		Role:        RoleUser,
		Permissions: []Permission{PermissionInvoices},
	}
	if !principal.HasPermission(PermissionInvoices) {
		t.Fatal("expected invoices permission to be granted")
	}
	if principal.HasPermission(PermissionSettings) {
		t.Fatal("settings permission should not be granted")
	}
}

func TestHasRole(t *testing.T) {
	principal := &Principal{Role: RoleAdmin}
	if !principal.HasRole(RoleOwner, RoleAdmin) {
		t.Fatal("admin should match allowed set")
	}
	if principal.HasRole(RoleOwner) {
		t.Fatal("admin is not owner")
	}
	if principal.HasRole() {
		t.Fatal("empty allowed set must reject")
	}
}
