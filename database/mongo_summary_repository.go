package database

import (
	"context"
	"errors"
	"fmt"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"rally-metrics-go/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ services.SummaryRepository = (*MongoSummaryRepository)(nil)

// SummaryCollection is the collection holding cached player summaries
const SummaryCollection = "summaries"

type MongoSummaryRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoSummaryRepository(db *MongoDB) *MongoSummaryRepository {
	collection := db.GetCollection(SummaryCollection)
	logger := logging.WithPrefix("mongo_summary_repo")

	ctx, cancel := withTimeout(context.Background(), ShortTimeout)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "fetchedAt", Value: 1}},
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on summaries collection: %v", err)
	}

	return &MongoSummaryRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *MongoSummaryRepository) GetSummary(ctx context.Context, key string) (*models.Summary, error) {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	var summary models.Summary
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find summary %q: %w", key, err)
	}
	return &summary, nil
}

func (r *MongoSummaryRepository) SaveSummary(ctx context.Context, key string, summary *models.Summary) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	doc := *summary
	doc.Key = key

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert summary %q: %w", key, err)
	}
	return nil
}

func (r *MongoSummaryRepository) PurgeSummaries(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to purge summaries: %w", err)
	}
	r.logger.Infof("Purged %d summaries", result.DeletedCount)
	return nil
}
