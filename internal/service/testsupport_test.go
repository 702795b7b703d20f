package service

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"billstack/config"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"
	"billstack/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ===== in-memory 租戶資料庫：以 bson round-trip 模擬 mongo 編解碼 =====

type memCollection struct {
	mu   sync.Mutex
	docs []bson.M
}

func toBsonM(document any) (bson.M, error) {
	raw, err := bson.Marshal(document)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeInto(document bson.M, result any) error {
	raw, err := bson.Marshal(document)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, result)
}

func matches(document bson.M, filter any) bool {
	if filter == nil {
		return true
	}
	filterMap, ok := filter.(bson.M)
	if !ok || len(filterMap) == 0 {
		return true
	}
	for key, want := range filterMap {
		got, exists := document[key]
		if !exists {
			return false
		}
		if oid, isOID := want.(primitive.ObjectID); isOID {
			if gotOID, gotIsOID := got.(primitive.ObjectID); !gotIsOID || gotOID != oid {
				return false
			}
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (c *memCollection) FindAll(ctx context.Context, filter any, results any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	slicePtr := reflect.ValueOf(results)
	sliceVal := slicePtr.Elem()
	elemType := sliceVal.Type().Elem()
	for _, document := range c.docs {
		if !matches(document, filter) {
			continue
		}
		target := reflect.New(elemType)
		if err := decodeInto(document, target.Interface()); err != nil {
			return err
		}
		sliceVal.Set(reflect.Append(sliceVal, target.Elem()))
	}
	return nil
}

func (c *memCollection) FindOne(ctx context.Context, filter any, projection any, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, document := range c.docs {
		if matches(document, filter) {
			return decodeInto(document, result)
		}
	}
	return tenant.ErrNotFound
}

func (c *memCollection) InsertOne(ctx context.Context, document any) (string, error) {
	converted, err := toBsonM(document)
	if err != nil {
		return "", err
	}
	id, ok := converted["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		converted["_id"] = id
	}
	c.mu.Lock()
	c.docs = append(c.docs, converted)
	c.mu.Unlock()
	return id.Hex(), nil
}

func (c *memCollection) InsertMany(ctx context.Context, documents []any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, document := range documents {
		converted, err := toBsonM(document)
		if err != nil {
			return 0, err
		}
		c.docs = append(c.docs, converted)
	}
	return int64(len(documents)), nil
}

func (c *memCollection) UpdateByID(ctx context.Context, id string, update any) (int64, error) {
	objectID, err := tenant.ParseObjectID(id)
	if err != nil {
		return 0, err
	}
	updateMap, ok := update.(bson.M)
	if !ok {
		return 0, fmt.Errorf("unsupported update type %T", update)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, document := range c.docs {
		docID, isOID := document["_id"].(primitive.ObjectID)
		if !isOID || docID != objectID {
			continue
		}
		if setFields, hasSet := updateMap["$set"].(bson.M); hasSet {
			for key, value := range setFields {
				document[key] = value
			}
		}
		if incFields, hasInc := updateMap["$inc"].(bson.M); hasInc {
			for key, delta := range incFields {
				current, _ := document[key].(int64)
				switch d := delta.(type) {
				case int64:
					document[key] = current + d
				case int:
					document[key] = current + int64(d)
				}
			}
		}
		return 1, nil
	}
	return 0, nil
}

func (c *memCollection) DeleteByID(ctx context.Context, id string) (int64, error) {
	objectID, err := tenant.ParseObjectID(id)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, document := range c.docs {
		docID, isOID := document["_id"].(primitive.ObjectID)
		if isOID && docID == objectID {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memCollection) DeleteAll(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deleted := int64(len(c.docs))
	c.docs = nil
	return deleted, nil
}

func (c *memCollection) NextSequence(ctx context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, document := range c.docs {
		if document["_id"] == name {
			seq, _ := document["seq"].(int64)
			seq++
			document["seq"] = seq
			return seq, nil
		}
	}
	c.docs = append(c.docs, bson.M{"_id": name, "seq": int64(1)})
	return 1, nil
}

func (c *memCollection) Count(ctx context.Context, filter any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var count int64
	for _, document := range c.docs {
		if matches(document, filter) {
			count++
		}
	}
	return count, nil
}

type memConn struct {
	mu          sync.Mutex
	collections map[string]*memCollection
}

func newMemConn() *memConn {
	return &memConn{collections: make(map[string]*memCollection)}
}

func (c *memConn) Ping(ctx context.Context) error { return nil }

func (c *memConn) CollectionNames(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.collections))
	for name, collection := range c.collections {
		collection.mu.Lock()
		hasDocs := len(collection.docs) > 0
		collection.mu.Unlock()
		if hasDocs {
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *memConn) Collection(name string) tenant.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	collection, ok := c.collections[name]
	if !ok {
		collection = &memCollection{}
		c.collections[name] = collection
	}
	return collection
}

func (c *memConn) Stats(ctx context.Context) (*tenant.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := &tenant.Stats{}
	for _, collection := range c.collections {
		collection.mu.Lock()
		docs := len(collection.docs)
		collection.mu.Unlock()
		if docs > 0 {
			stats.Collections++
			stats.Objects += int64(docs)
		}
	}
	return stats, nil
}

func (c *memConn) Close(ctx context.Context) error { return nil }

// memConnector 同一 dbName 永遠回同一條連線，方便測試先播資料
type memConnector struct {
	mu    sync.Mutex
	conns map[string]*memConn
}

func newMemConnector() *memConnector {
	return &memConnector{conns: make(map[string]*memConn)}
}

func (f *memConnector) Connect(ctx context.Context, dbName string, onEvent tenant.EventFunc) (tenant.Conn, error) {
	return f.conn(dbName), nil
}

func (f *memConnector) conn(dbName string) *memConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[dbName]
	if !ok {
		conn = newMemConn()
		f.conns[dbName] = conn
	}
	return conn
}

// fakeDirectory 以 map 模擬控制平面租戶目錄
type fakeDirectory struct {
	tenants map[string]*model.Tenant
}

func (d *fakeDirectory) GetBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	tenantDoc, ok := d.tenants[subdomain]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return tenantDoc, nil
}

func newTestTrace(t *testing.T) *telemetry.Trace {
	t.Helper()
	trace, err := telemetry.NewTrace(nil)
	if err != nil {
		t.Fatalf("NewTrace: %v", err)
	}
	return trace
}

func newTestRegistry(t *testing.T, connector tenant.Connector) *tenant.Registry {
	t.Helper()
	registry, cleanup := tenant.NewRegistry(
		zap.NewNop(),
		&config.Configuration{},
		connector,
		telemetry.NewMetric(nil),
		newTestTrace(t),
	)
	t.Cleanup(cleanup)
	return registry
}
