package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Store backed by a MongoDB database.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// ConnectMongo dials uri, verifies the connection and returns a store bound to dbName.
func ConnectMongo(ctx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &Mongo{client: client, db: client.Database(dbName), timeout: timeout}, nil
}

// NewMongo wraps an existing database handle. The caller owns the client.
func NewMongo(db *mongo.Database, timeout time.Duration) *Mongo {
	return &Mongo{db: db, timeout: timeout}
}

func (m *Mongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

// EnsureIndexes creates the unique indexes listed in uniqueFields.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	for collection, field := range uniqueFields {
		timeoutCtx, cancel := m.withTimeout(ctx)
		_, err := m.db.Collection(collection).Indexes().CreateOne(timeoutCtx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		})
		cancel()
		if err != nil {
			return fmt.Errorf("creating unique index on %s.%s: %w", collection, field, err)
		}
	}
	return nil
}

func (m *Mongo) FindOne(ctx context.Context, collection string, filter Filter, out any) error {
	query, err := mongoFilter(filter)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	err = m.db.Collection(collection).FindOne(timeoutCtx, query).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("finding %s document: %w", collection, err)
	}
	return nil
}

func (m *Mongo) FindMany(ctx context.Context, collection string, filter Filter, out any) error {
	query, err := mongoFilter(filter)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	cursor, err := m.db.Collection(collection).Find(timeoutCtx, query)
	if err != nil {
		return fmt.Errorf("finding %s documents: %w", collection, err)
	}
	if err := cursor.All(timeoutCtx, out); err != nil {
		return fmt.Errorf("decoding %s documents: %w", collection, err)
	}
	return nil
}

func (m *Mongo) InsertOne(ctx context.Context, collection string, doc any) (InsertResult, error) {
	timeoutCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	res, err := m.db.Collection(collection).InsertOne(timeoutCtx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return InsertResult{}, fmt.Errorf("inserting %s document: %w", collection, ErrDuplicateKey)
		}
		return InsertResult{}, fmt.Errorf("inserting %s document: %w", collection, err)
	}

	id := fmt.Sprint(res.InsertedID)
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (m *Mongo) UpdateOne(ctx context.Context, collection, id string, patch map[string]any, mode UpdateMode) (UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return UpdateResult{}, ErrInvalidID
	}

	var update bson.M
	switch mode {
	case ReplaceFields:
		update = bson.M{"$set": bson.M(patch)}
	case AppendToArray:
		update = bson.M{"$push": bson.M(patch)}
	default:
		return UpdateResult{}, fmt.Errorf("unsupported update mode %d", mode)
	}

	timeoutCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	res, err := m.db.Collection(collection).UpdateOne(timeoutCtx, bson.M{"_id": oid}, update)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("updating %s document: %w", collection, err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (m *Mongo) DeleteOne(ctx context.Context, collection, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrInvalidID
	}

	timeoutCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	res, err := m.db.Collection(collection).DeleteOne(timeoutCtx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("deleting %s document: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := m.withTimeout(ctx)
	defer cancel()
	return m.db.Client().Ping(timeoutCtx, nil)
}

// Close disconnects the client when the store owns it.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func mongoFilter(f Filter) (bson.M, error) {
	query := bson.M{}
	if f.ID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ID)
		if err != nil {
			return nil, ErrInvalidID
		}
		query["_id"] = oid
	}
	for field, value := range f.Equal {
		query[field] = value
	}
	if f.Search != nil && f.Search.Term != "" {
		pattern := regexp.QuoteMeta(f.Search.Term)
		or := make(bson.A, 0, len(f.Search.Fields))
		for _, field := range f.Search.Fields {
			or = append(or, bson.M{field: primitive.Regex{Pattern: pattern, Options: "i"}})
		}
		query["$or"] = or
	}
	return query, nil
}
