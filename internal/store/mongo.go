package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is the MongoDB backend. Identifiers are ObjectIDs rendered as hex.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// NewMongo connects to uri and verifies the connection with a ping bounded by timeout.
func NewMongo(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	m := &Mongo{client: client, db: client.Database(database), now: time.Now}
	pctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := m.Ping(pctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) Name() string { return "mongo/" + m.db.Name() }

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return mongoErr("ping", err)
	}
	return nil
}

// mongoErr marks connectivity failures as ErrUnavailable and wraps the rest.
func mongoErr(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("mongo %s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("mongo %s: %w", op, err)
}

func toBSON(f Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (m *Mongo) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, mongoErr("count", err)
	}
	return n, nil
}

func (m *Mongo) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, bson.M(prepare(doc, m.now())))
	if err != nil {
		return "", mongoErr("insert", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

func (m *Mongo) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, mongoErr("find", err)
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, mongoErr("find", err)
	}
	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, Document(r))
	}
	return out, nil
}

func (m *Mongo) Collections(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, mongoErr("list collections", err)
	}
	return names, nil
}
