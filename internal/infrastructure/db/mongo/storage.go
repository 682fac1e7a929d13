package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

const collectionClients = "client_state"

// clientDoc holds every blob of one client; a single-document write is atomic.
type clientDoc struct {
	ID        string            `bson:"_id"`
	Blobs     map[string][]byte `bson:"blobs"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// ClientStorage keeps per-client state as one document per client.
type ClientStorage struct {
	col *mongo.Collection
	ttl time.Duration
}

var _ ports.ClientStorage = (*ClientStorage)(nil)

func NewClientStorage(db *mongo.Database, ttl time.Duration) *ClientStorage {
	return &ClientStorage{col: db.Collection(collectionClients), ttl: ttl}
}

func (s *ClientStorage) Load(ctx context.Context, clientID, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	opts := options.FindOne().SetProjection(bson.M{"blobs." + key: 1})
	err := s.col.FindOne(ctx, bson.M{"_id": clientID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find client state: %w", err)
	}
	return doc.Blobs[key], nil
}

func (s *ClientStorage) Save(ctx context.Context, clientID, key string, blob []byte) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"blobs." + key: blob,
		"updated_at":   time.Now().UTC(),
	}}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": clientID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save client state: %w", err)
	}
	return nil
}

func (s *ClientStorage) Clear(ctx context.Context, clientID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": clientID}); err != nil {
		return fmt.Errorf("mongo clear client state: %w", err)
	}
	return nil
}

func (s *ClientStorage) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

// EnsureIndexes creates the expiry index when a ttl is configured.
func (s *ClientStorage) EnsureIndexes(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(s.ttl.Seconds())),
	})
	return err
}
