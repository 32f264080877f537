package fitnessrecord

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "pefitness/internal/domain/fitness"
)

// mongoDocument is the stored shape: the record plus its logical path.
type mongoDocument struct {
	domain.Record  `bson:",inline"`
	CollectionPath string `bson:"collectionPath"`
}

// MongoStore writes records to MongoDB, one InsertOne per record.
type MongoStore struct {
	coll *mongo.Collection
	path string
}

// Connect opens a client for uri and verifies it answers.
// PRE: uri is a mongodb:// or mongodb+srv:// URI
// POST: returns a connected client or an error wrapping ErrStore
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrStore, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping: %w", ErrStore, err)
	}
	return client, nil
}

// NewMongoStore binds the store to database name (or the sanitized appID
// when name is empty) and the fitness_records collection.
func NewMongoStore(client *mongo.Client, database, appID string) *MongoStore {
	if database == "" {
		database = DatabaseName(appID)
	}
	return &MongoStore{
		coll: client.Database(database).Collection(Collection),
		path: CollectionPath(appID),
	}
}

// Append writes one record.
// PRE: rec was produced by fitness.NewRecord
// POST: one document inserted, or an error wrapping ErrStore
func (s *MongoStore) Append(ctx context.Context, rec domain.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if _, err := s.coll.InsertOne(ctx, toDocument(rec, s.path)); err != nil {
		return fmt.Errorf("%w: insert one: %w", ErrStore, err)
	}
	return nil
}

func toDocument(rec domain.Record, path string) mongoDocument {
	return mongoDocument{Record: rec, CollectionPath: path}
}

// DatabaseName turns an app id into a legal MongoDB database name.
func DatabaseName(appID string) string {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		appID = DefaultAppID
	}
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.', ' ', '"', '$', '*', '<', '>', ':', '|', '?':
			return '_'
		}
		return r
	}, appID)
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
