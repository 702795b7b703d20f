package tenant

import (
	"context"
	"errors"
)

// ErrNotFound 查無文件；各驅動實作需把自家的 not-found 映射到這個
var ErrNotFound = errors.New("document not found")

// EventKind 底層驅動回報的連線事件
type EventKind int

const (
	EventDisconnected EventKind = iota
	EventReconnected
)

// EventFunc 由 Registry 註冊給 Connector，驅動層在連線狀態改變時回呼。
// 回呼可能來自驅動內部的監控 goroutine，實作必須可併發呼叫。
type EventFunc func(kind EventKind)

// Stats 單一租戶資料庫的儲存統計
type Stats struct {
	Collections int64   `json:"collections" bson:"collections"`
	Objects     int64   `json:"objects" bson:"objects"`
	DataSize    float64 `json:"dataSize" bson:"dataSize"`
	StorageSize float64 `json:"storageSize" bson:"storageSize"`
	Indexes     int64   `json:"indexes" bson:"indexes"`
	IndexSize   float64 `json:"indexSize" bson:"indexSize"`
}

// Collection 驅動無關的集合操作；filter/update/document 皆為驅動原生
// 型別（mongo 實作吃 bson.M / struct）。
type Collection interface {
	FindAll(ctx context.Context, filter any, results any) error
	FindOne(ctx context.Context, filter any, projection any, result any) error
	InsertOne(ctx context.Context, document any) (insertedID string, err error)
	InsertMany(ctx context.Context, documents []any) (int64, error)
	UpdateByID(ctx context.Context, id string, update any) (matched int64, err error)
	DeleteByID(ctx context.Context, id string) (deleted int64, err error)
	DeleteAll(ctx context.Context) (deleted int64, err error)
	Count(ctx context.Context, filter any) (int64, error)
	// NextSequence 以 name 為 _id 的計數文件做原子遞增並回傳新值；
	// 文件不存在時從 1 起算。
	NextSequence(ctx context.Context, name string) (int64, error)
}

// Conn 一條已建立的租戶資料庫連線
type Conn interface {
	Ping(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
	Collection(name string) Collection
	Stats(ctx context.Context) (*Stats, error)
	Close(ctx context.Context) error
}

// Connector 建立租戶資料庫連線的驅動抽象。Connect 必須是阻塞的：
// 回傳時連線要嘛可用、要嘛附帶錯誤。
type Connector interface {
	Connect(ctx context.Context, dbName string, onEvent EventFunc) (Conn, error)
}
