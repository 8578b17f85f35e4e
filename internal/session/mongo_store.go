package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Sessions"
)

type sessionDocument struct {
	BrowserID string    `bson:"_id"`
	Record    Record    `bson:",inline"`
	UpdatedAt time.Time `bson:"updated_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoStore keeps one document per browser. A TTL index on expires_at lets
// the server reap abandoned sessions.
type MongoStore struct {
	collection *mongo.Collection
	ttl        time.Duration
	timeout    time.Duration
	now        func() time.Time
}

func NewMongoStore(db *mongo.Database, ttl, timeout time.Duration) *MongoStore {
	return &MongoStore{
		collection: db.Collection(CollectionName),
		ttl:        ttl,
		timeout:    timeout,
		now:        time.Now,
	}
}

// EnsureIndexes creates the TTL index. Safe to call on every start.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("failed to create session ttl index: %w", err)
	}
	return nil
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < s.timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) Load(ctx context.Context, browserID string) (Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc sessionDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": browserID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("failed to load session: %w", err)
	}

	// the TTL monitor runs about once a minute
	if !doc.ExpiresAt.IsZero() && s.now().After(doc.ExpiresAt) {
		return Record{}, nil
	}
	return doc.Record, nil
}

func (s *MongoStore) Save(ctx context.Context, browserID string, rec Record) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now().UTC().Truncate(time.Millisecond)
	doc := sessionDocument{
		BrowserID: browserID,
		Record:    rec,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": browserID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *MongoStore) Clear(ctx context.Context, browserID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": browserID}); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.collection.Database().Client().Ping(ctx, nil)
}
