package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetpotato0/gov-allin/config"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/history"
)

var _ history.Store = (*Store)(nil)

// Config holds MongoDB connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
	Capacity   int
}

// DefaultConfig returns a local configuration.
func DefaultConfig() *Config {
	return &Config{
		URI:        "mongodb://localhost:27017",
		Database:   "gov_allin",
		Collection: "evaluations",
		Capacity:   history.DefaultCapacity,
	}
}

type evaluationDoc struct {
	ID          string                      `bson:"_id"`
	Seq         int64                       `bson:"seq"`
	Score       float64                     `bson:"overall_score"`
	Level       string                      `bson:"level"`
	EvaluatedAt time.Time                   `bson:"evaluated_at"`
	Result      governance.EvaluationResult `bson:"result"`
}

// Store keeps evaluations in a collection trimmed to capacity.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	capacity   int
}

// New connects to MongoDB and ensures the ordering index.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := config.ValidateMongoDBConfig(cfg.URI, cfg.Database, cfg.Collection, cfg.Capacity); err != nil {
		return nil, fmt.Errorf("invalid MongoDB configuration: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		capacity:   cfg.Capacity,
	}
	_, err = s.collection.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "seq", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

// Append inserts rec, then deletes everything older than the newest capacity records.
func (s *Store) Append(ctx context.Context, rec governance.EvaluationResult) error {
	doc := evaluationDoc{
		ID:          rec.ID,
		Seq:         time.Now().UnixNano(),
		Score:       rec.OverallScore,
		Level:       string(rec.Level),
		EvaluatedAt: rec.EvaluatedAt,
		Result:      rec,
	}
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("eval:%d", doc.Seq)
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	var boundary evaluationDoc
	err := s.collection.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}).SetSkip(int64(s.capacity-1)),
	).Decode(&boundary)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find trim boundary: %w", err)
	}
	if _, err := s.collection.DeleteMany(ctx, bson.M{"seq": bson.M{"$lt": boundary.Seq}}); err != nil {
		return fmt.Errorf("failed to trim evaluations: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, n int) ([]governance.EvaluationResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}})
	if n > 0 {
		opts.SetLimit(int64(n))
	}
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []evaluationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode evaluations: %w", err)
	}
	out := make([]governance.EvaluationResult, len(docs))
	for i, d := range docs {
		out[i] = d.Result
	}
	return out, nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return int(n), nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear evaluations: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
