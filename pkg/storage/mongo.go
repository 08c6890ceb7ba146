package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/rose/pkg/network"
)

// Defaults for MongoStore.
const (
	DefaultMongoDatabase   = "rose"
	DefaultMongoCollection = "state"
)

// MongoStore keeps the state as one document with _id "rose-networks".
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

type stateDocument struct {
	ID        string        `bson:"_id"`
	State     network.State `bson:"state"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the given database ("rose" when
// empty).
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewMongoStoreFromClient(client, database)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. Close does not
// disconnect it.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultMongoCollection),
	}
}

// Load implements network.Store.
func (s *MongoStore) Load(ctx context.Context) (*network.State, error) {
	var doc stateDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": StateKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, network.ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("find state: %w", err)
	}
	return &doc.State, nil
}

// Save implements network.Store with an upsert.
func (s *MongoStore) Save(ctx context.Context, st *network.State) error {
	doc := stateDocument{ID: StateKey, State: *st, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": StateKey}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ network.Store = (*MongoStore)(nil)
