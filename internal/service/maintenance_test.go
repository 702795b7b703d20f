package service

import (
	"context"
	"testing"

	cErr "billstack/internal/pkg/error"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestMaintenanceService(t *testing.T, connector *memConnector) *MaintenanceService {
	t.Helper()
	registry := newTestRegistry(t, connector)
	return NewMaintenanceService(newTestTrace(t), zap.NewNop(), registry)
}

func seedDocs(t *testing.T, connector *memConnector, tenantKey, collectionName string, docs ...bson.M) {
	t.Helper()
	collection := connector.conn("tenant_" + tenantKey).Collection(collectionName)
	for _, doc := range docs {
		if _, err := collection.InsertOne(context.Background(), doc); err != nil {
			t.Fatalf("seed %s: %v", collectionName, err)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	connector := newMemConnector()
	seedDocs(t, connector, "acme", "customers", bson.M{"name": "Ravi"})
	maintenanceService := newTestMaintenanceService(t, connector)

	health, err := maintenanceService.HealthCheck(context.Background(), "acme")
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if health.Status != "ok" {
		t.Fatalf("expected ok, got %s", health.Status)
	}
	if health.TenantKey != "acme" {
		t.Fatalf("expected tenant acme, got %s", health.TenantKey)
	}
	if len(health.Collections) != 1 || health.Collections[0] != "customers" {
		t.Fatalf("expected [customers], got %v", health.Collections)
	}
}

func TestBackupCapturesAllCollections(t *testing.T) {
	connector := newMemConnector()
	seedDocs(t, connector, "acme", "customers",
		bson.M{"name": "Ravi", "state": "Karnataka"},
		bson.M{"name": "Meera", "state": "Kerala"},
	)
	seedDocs(t, connector, "acme", "products", bson.M{"name": "Widget", "price": 100.0})
	maintenanceService := newTestMaintenanceService(t, connector)

	snapshot, err := maintenanceService.Backup(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if snapshot.TenantKey != "acme" {
		t.Fatalf("expected tenant acme, got %s", snapshot.TenantKey)
	}
	if snapshot.Timestamp.IsZero() {
		t.Fatal("snapshot timestamp should be set")
	}
	if len(snapshot.Collections) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(snapshot.Collections))
	}
	if got := len(snapshot.Collections["customers"]); got != 2 {
		t.Fatalf("expected 2 customers, got %d", got)
	}
	if got := len(snapshot.Collections["products"]); got != 1 {
		t.Fatalf("expected 1 product, got %d", got)
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	connector := newMemConnector()
	seedDocs(t, connector, "acme", "customers",
		bson.M{"name": "Ravi"},
		bson.M{"name": "Meera"},
	)
	seedDocs(t, connector, "acme", "products", bson.M{"name": "Widget"})
	maintenanceService := newTestMaintenanceService(t, connector)

	snapshot, err := maintenanceService.Backup(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	// 快照之後繼續寫入：多一個客戶、多一個快照外的集合
	seedDocs(t, connector, "acme", "customers", bson.M{"name": "Intruder"})
	seedDocs(t, connector, "acme", "scratch", bson.M{"junk": true})

	result, err := maintenanceService.Restore(context.Background(), "acme", snapshot)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if result.Restored != 3 {
		t.Fatalf("expected 3 restored documents, got %d", result.Restored)
	}
	if len(result.Completed) != 2 {
		t.Fatalf("expected 2 completed collections, got %v", result.Completed)
	}

	conn := connector.conn("tenant_acme")
	customerCount, err := conn.Collection("customers").Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count customers: %v", err)
	}
	if customerCount != 2 {
		t.Fatalf("expected 2 customers after restore, got %d", customerCount)
	}
	scratchCount, err := conn.Collection("scratch").Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count scratch: %v", err)
	}
	if scratchCount != 0 {
		t.Fatalf("collection outside the snapshot must be emptied, got %d docs", scratchCount)
	}
}

func TestRestoreRejectsEmptySnapshot(t *testing.T) {
	maintenanceService := newTestMaintenanceService(t, newMemConnector())

	_, err := maintenanceService.Restore(context.Background(), "acme", nil)
	assertErrorCode(t, err, cErr.BAD_REQUEST_BODY)

	_, err = maintenanceService.Restore(context.Background(), "acme", &Snapshot{TenantKey: "acme"})
	assertErrorCode(t, err, cErr.BAD_REQUEST_BODY)
}

func TestStats(t *testing.T) {
	connector := newMemConnector()
	seedDocs(t, connector, "acme", "customers", bson.M{"name": "Ravi"}, bson.M{"name": "Meera"})
	seedDocs(t, connector, "acme", "invoices", bson.M{"number": "INV-2026-00001"})
	maintenanceService := newTestMaintenanceService(t, connector)

	stats, err := maintenanceService.Stats(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Collections != 2 {
		t.Fatalf("expected 2 collections, got %d", stats.Collections)
	}
	if stats.Objects != 3 {
		t.Fatalf("expected 3 objects, got %d", stats.Objects)
	}
}

func TestRegistryOverviewAndRelease(t *testing.T) {
	connector := newMemConnector()
	maintenanceService := newTestMaintenanceService(t, connector)

	if _, err := maintenanceService.HealthCheck(context.Background(), "acme"); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if _, err := maintenanceService.HealthCheck(context.Background(), "globex"); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	entries := maintenanceService.RegistryOverview(context.Background())
	if len(entries) != 2 {
		t.Fatalf("expected 2 registry entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Status != "ready" {
			t.Fatalf("tenant %s: expected ready, got %s", entry.TenantKey, entry.Status)
		}
	}

	if err := maintenanceService.ReleaseConnection(context.Background(), "acme"); err != nil {
		t.Fatalf("ReleaseConnection: %v", err)
	}
	entries = maintenanceService.RegistryOverview(context.Background())
	if len(entries) != 1 || entries[0].TenantKey != "globex" {
		t.Fatalf("expected only globex to remain, got %v", entries)
	}
}
