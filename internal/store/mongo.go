package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/config"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// MongoStore implements Store on a MongoDB collection. Documents use the
// record id as _id. BSON dates have millisecond precision.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	opts       storeOptions
}

// ConnectMongo connects to MongoDB, verifies the connection, and ensures indexes.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig, opts ...Option) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoStore(client, client.Database(cfg.Database).Collection(cfg.Collection), opts...)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStore wraps an existing client and collection. The store owns client.
func NewMongoStore(client *mongo.Client, collection *mongo.Collection, opts ...Option) *MongoStore {
	return &MongoStore{client: client, collection: collection, opts: buildOptions(opts)}
}

var _ Store = (*MongoStore)(nil)

// EnsureIndexes creates the createdAt index used by List.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create mongo indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Create(ctx context.Context, p NewSavedAnalysis) (*models.SavedAnalysis, error) {
	rec, err := s.opts.newRecord(p, time.Millisecond)
	if err != nil {
		return nil, err
	}

	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("create saved analysis: %w", err)
	}
	return rec, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*models.SavedAnalysis, error) {
	var rec models.SavedAnalysis
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get saved analysis: %w", err)
	}
	return normalizeMongo(&rec), nil
}

func (s *MongoStore) List(ctx context.Context) ([]*models.SavedAnalysis, error) {
	cursor, err := s.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list saved analyses: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]*models.SavedAnalysis, 0)
	for cursor.Next(ctx) {
		var rec models.SavedAnalysis
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode saved analysis: %w", err)
		}
		out = append(out, normalizeMongo(&rec))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error) {
	a = cloneAnalysis(a)
	update := bson.M{"$set": bson.M{
		"title":    models.TitleFor(a),
		"analysis": a,
	}}

	var rec models.SavedAnalysis
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update saved analysis: %w", err)
	}
	return normalizeMongo(&rec), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete saved analysis: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeMongo(rec *models.SavedAnalysis) *models.SavedAnalysis {
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Analysis.KeyPoints == nil {
		rec.Analysis.KeyPoints = []string{}
	}
	return rec
}
