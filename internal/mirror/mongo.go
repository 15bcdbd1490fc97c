// Package mirror maintains the document-store backup of the articles table.
// Writes are idempotent upserts keyed by URL; a lost mirror never fails the
// caller, it only degrades the reported counts.
package mirror

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/config"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

const serverSelectionTimeout = 5 * time.Second

type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI()).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client:     client,
		collection: client.Database(cfg.MongoDBName).Collection(cfg.MongoCollection),
	}, nil
}

// Upsert replaces or inserts each article keyed by URL in one bulk write.
// The returned count covers every article the batch touched, so repeating
// the same batch still reports a write per article.
func (s *Store) Upsert(ctx context.Context, articles []news.Article) (int64, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	if s == nil || s.collection == nil {
		return 0, fmt.Errorf("mirror store is not initialized")
	}

	models := make([]mongo.WriteModel, 0, len(articles))
	for _, article := range articles {
		doc := articleDocument(article)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"url": article.URL}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	result, err := s.collection.BulkWrite(ctx, models)
	if err != nil {
		return 0, fmt.Errorf("bulk upsert articles: %w", err)
	}

	return mirroredCount(result), nil
}

// mirroredCount counts matched rather than modified documents: replacing a
// document with identical content matches without modifying, and that
// replacement still counts as a mirrored write.
func mirroredCount(result *mongo.BulkWriteResult) int64 {
	if result == nil {
		return 0
	}
	return result.MatchedCount + result.UpsertedCount
}

// Count returns the number of mirrored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	if s == nil || s.collection == nil {
		return 0, fmt.Errorf("mirror store is not initialized")
	}

	count, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count mirrored articles: %w", err)
	}
	return count, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func articleDocument(article news.Article) bson.M {
	doc := bson.M{
		"title":        article.Title,
		"description":  article.Description,
		"url":          article.URL,
		"image_url":    article.ImageURL,
		"source_name":  article.SourceName,
		"source_url":   article.SourceURL,
		"language":     article.Language,
		"full_content": article.FullContent,
		"authors":      article.Authors,
		"tickers":      article.Tickers,
		"topics":       article.Topics,
	}
	if article.PublishedAt != nil {
		doc["published_at"] = article.PublishedAt.UTC()
	}
	return doc
}
