package tenant

import (
	"context"
	"errors"
	"fmt"

	"billstack/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/description"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoConnector 每個租戶資料庫開獨立的 mongo client，
// 靠 ServerMonitor 把斷線事件回報給註冊表。
type MongoConnector struct {
	uri    string
	logger *zap.Logger
}

func NewMongoConnector(logger *zap.Logger, conf *config.Configuration) *MongoConnector {
	return &MongoConnector{
		uri:    conf.MongoDB.URI,
		logger: logger,
	}
}

func (connector *MongoConnector) Connect(ctx context.Context, dbName string, onEvent EventFunc) (Conn, error) {
	monitor := &event.ServerMonitor{
		ServerDescriptionChanged: func(e *event.ServerDescriptionChangedEvent) {
			if e.NewDescription.Kind == description.Unknown && onEvent != nil {
				onEvent(EventDisconnected)
			}
		},
	}

	opts := options.Client().
		ApplyURI(connector.uri).
		SetServerMonitor(monitor)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	// Connect 本身是惰性的，ping 確認連線真的可用
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &mongoConn{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// ParseObjectID repository 組 _id 查詢條件時用
func ParseObjectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

type mongoConn struct {
	client *mongo.Client
	db     *mongo.Database
}

func (conn *mongoConn) Ping(ctx context.Context) error {
	return conn.client.Ping(ctx, readpref.Primary())
}

func (conn *mongoConn) CollectionNames(ctx context.Context) ([]string, error) {
	return conn.db.ListCollectionNames(ctx, bson.M{})
}

func (conn *mongoConn) Collection(name string) Collection {
	return &mongoCollection{collection: conn.db.Collection(name)}
}

func (conn *mongoConn) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	result := conn.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}})
	if err := result.Decode(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (conn *mongoConn) Close(ctx context.Context) error {
	return conn.client.Disconnect(ctx)
}

type mongoCollection struct {
	collection *mongo.Collection
}

func normalizeFilter(filter any) any {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

func (c *mongoCollection) FindAll(ctx context.Context, filter any, results any) error {
	cursor, err := c.collection.Find(ctx, normalizeFilter(filter))
	if err != nil {
		return err
	}
	return cursor.All(ctx, results)
}

func (c *mongoCollection) FindOne(ctx context.Context, filter any, projection any, result any) error {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	err := c.collection.FindOne(ctx, normalizeFilter(filter), opts).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (c *mongoCollection) InsertOne(ctx context.Context, document any) (string, error) {
	result, err := c.collection.InsertOne(ctx, document)
	if err != nil {
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(result.InsertedID), nil
}

func (c *mongoCollection) InsertMany(ctx context.Context, documents []any) (int64, error) {
	if len(documents) == 0 {
		return 0, nil
	}
	result, err := c.collection.InsertMany(ctx, documents)
	if err != nil {
		return 0, err
	}
	return int64(len(result.InsertedIDs)), nil
}

func (c *mongoCollection) UpdateByID(ctx context.Context, id string, update any) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, err
	}
	result, err := c.collection.UpdateByID(ctx, oid, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (c *mongoCollection) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, err
	}
	result, err := c.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (c *mongoCollection) DeleteAll(ctx context.Context) (int64, error) {
	result, err := c.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (c *mongoCollection) Count(ctx context.Context, filter any) (int64, error) {
	return c.collection.CountDocuments(ctx, normalizeFilter(filter))
}

func (c *mongoCollection) NextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := c.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
