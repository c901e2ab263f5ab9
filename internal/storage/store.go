// Package storage provides MongoDB storage for Spiritual Reflections.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

// ErrNotFound is returned when a document does not exist or the id is malformed.
var ErrNotFound = errors.New("not found")

// Store provides access to all MongoDB collections.
type Store struct {
	client          *mongo.Client
	db              *mongo.Database
	queue           *mongo.Collection
	articles        *mongo.Collection
	interpretations *mongo.Collection
}

// NewStore creates a new storage connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	log.Info().Str("db", dbName).Msg("Connected to MongoDB")

	store := &Store{
		client:          client,
		db:              db,
		queue:           db.Collection("pending_queue"),
		articles:        db.Collection("articles"),
		interpretations: db.Collection("interpretations"),
	}

	store.createIndexes(ctx)
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// createIndexes creates necessary indexes for efficient queries.
func (s *Store) createIndexes(ctx context.Context) {
	queueIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "external_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "ai_score", Value: -1}}},
	}
	if _, err := s.queue.Indexes().CreateMany(ctx, queueIndexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create queue indexes")
	}

	articleIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "external_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	if _, err := s.articles.Indexes().CreateMany(ctx, articleIndexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create article indexes")
	}

	interpretationIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "news_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := s.interpretations.Indexes().CreateMany(ctx, interpretationIndexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create interpretation indexes")
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// ============================================================================
// QUEUE OPERATIONS
// ============================================================================

// AddToQueue inserts items that are not queued yet. Items whose external id
// is already present are counted as skipped.
func (s *Store) AddToQueue(ctx context.Context, items []models.QueueItem) (added, skipped int, err error) {
	now := time.Now().UTC()
	for i := range items {
		item := items[i]
		item.ID = primitive.NilObjectID
		item.Status = models.QueueStatusPending
		item.CreatedAt = now

		filter := bson.M{"external_id": item.ExternalID}
		update := bson.M{"$setOnInsert": item}
		opts := options.Update().SetUpsert(true)

		res, err := s.queue.UpdateOne(ctx, filter, update, opts)
		if err != nil {
			if ctx.Err() != nil {
				return added, skipped, ctx.Err()
			}
			log.Warn().Err(err).Str("external_id", item.ExternalID).Msg("Failed to queue article")
			skipped++
			continue
		}
		if res.UpsertedCount > 0 {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped, nil
}

// GetPendingQueue returns items waiting for review, highest score first.
func (s *Store) GetPendingQueue(ctx context.Context) ([]models.QueueItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ai_score", Value: -1}, {Key: "created_at", Value: -1}})

	cursor, err := s.queue.Find(ctx, bson.M{"status": models.QueueStatusPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.QueueItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ApproveQueueItem publishes a queued item as an approved article and removes
// it from the queue. An empty category keeps the suggested one.
func (s *Store) ApproveQueueItem(ctx context.Context, id, category string) (*models.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var item models.QueueItem
	if err := s.queue.FindOne(ctx, bson.M{"_id": oid}).Decode(&item); err != nil {
		return nil, notFound(err)
	}

	if category == "" {
		category = item.SuggestedCategory
	}
	now := time.Now().UTC()
	article := &models.Article{
		ExternalID:  item.ExternalID,
		Title:       item.Title,
		Description: item.Description,
		Content:     item.Content,
		Source:      item.Source,
		Author:      item.Author,
		URL:         item.URL,
		ImageURL:    item.ImageURL,
		Category:    category,
		AIScore:     item.AIScore,
		AIReasons:   item.AIReasons,
		Status:      models.ArticleStatusApproved,
		PublishedAt: item.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if article.PublishedAt.IsZero() {
		article.PublishedAt = now
	}

	res, err := s.articles.InsertOne(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		article.ID = oid
	}

	if _, err := s.queue.DeleteOne(ctx, bson.M{"_id": item.ID}); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("Approved article left in queue")
	}
	return article, nil
}

// RejectQueueItem marks a queued item as rejected. Rejected items stay in
// the collection so later refills skip them.
func (s *Store) RejectQueueItem(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.queue.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": models.QueueStatusRejected}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQueueScore records a new score for a queued item.
func (s *Store) UpdateQueueScore(ctx context.Context, id primitive.ObjectID, score int, reasons []string) error {
	update := bson.M{"$set": bson.M{"ai_score": score, "ai_reasons": reasons}}
	_, err := s.queue.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// ============================================================================
// ARTICLE OPERATIONS
// ============================================================================

// GetApprovedArticles returns approved articles, newest first. An empty
// category returns every category.
func (s *Store) GetApprovedArticles(ctx context.Context, limit int, category string) ([]models.Article, error) {
	filter := bson.M{"status": models.ArticleStatusApproved}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findArticles(ctx, filter, opts)
}

// ArticleFilter narrows ListArticles.
type ArticleFilter struct {
	Page     int
	Limit    int
	Status   models.ArticleStatus
	Category string
}

// ListArticles returns one page of articles for administration together with
// the total number of matches.
func (s *Store) ListArticles(ctx context.Context, f ArticleFilter) ([]models.Article, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	total, err := s.articles.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	articles, err := s.findArticles(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// CreateArticle stores a manually added article as approved. The external id
// is derived from the URL, else the title.
func (s *Store) CreateArticle(ctx context.Context, article *models.Article) error {
	now := time.Now().UTC()
	article.ID = primitive.NilObjectID
	article.ExternalID = models.ArticleRecord{URL: article.URL, Title: article.Title}.DerivedID()
	article.Status = models.ArticleStatusApproved
	article.CreatedAt = now
	article.UpdatedAt = now
	if article.PublishedAt.IsZero() {
		article.PublishedAt = now
	}

	res, err := s.articles.InsertOne(ctx, article)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		article.ID = oid
	}
	return nil
}

// UpdateArticleStatus sets the publication status of an article.
func (s *Store) UpdateArticleStatus(ctx context.Context, id string, status models.ArticleStatus) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	res, err := s.articles.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateArticleScore records a new score for an article.
func (s *Store) UpdateArticleScore(ctx context.Context, id primitive.ObjectID, score int, reasons []string) error {
	update := bson.M{"$set": bson.M{"ai_score": score, "ai_reasons": reasons, "updated_at": time.Now().UTC()}}
	_, err := s.articles.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// DeleteArticle removes an article.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.articles.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findArticles(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Article, error) {
	cursor, err := s.articles.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	articles := []models.Article{}
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// ============================================================================
// INTERPRETATION OPERATIONS
// ============================================================================

// GetInterpretation returns the stored interpretation for a news id.
func (s *Store) GetInterpretation(ctx context.Context, newsID string) (*models.Interpretation, error) {
	var interp models.Interpretation
	if err := s.interpretations.FindOne(ctx, bson.M{"news_id": newsID}).Decode(&interp); err != nil {
		return nil, notFound(err)
	}
	return &interp, nil
}

// SaveInterpretation stores an interpretation, replacing any earlier one.
func (s *Store) SaveInterpretation(ctx context.Context, interp *models.Interpretation) error {
	if interp.CreatedAt.IsZero() {
		interp.CreatedAt = time.Now().UTC()
	}
	filter := bson.M{"news_id": interp.NewsID}
	update := bson.M{"$set": interp}
	opts := options.Update().SetUpsert(true)

	_, err := s.interpretations.UpdateOne(ctx, filter, update, opts)
	return err
}

// DeleteInterpretation removes the interpretation for a news id.
func (s *Store) DeleteInterpretation(ctx context.Context, newsID string) error {
	_, err := s.interpretations.DeleteOne(ctx, bson.M{"news_id": newsID})
	return err
}

// ClearInterpretations removes every stored interpretation.
func (s *Store) ClearInterpretations(ctx context.Context) (int64, error) {
	res, err := s.interpretations.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountInterpretations returns the number of stored interpretations.
func (s *Store) CountInterpretations(ctx context.Context) (int64, error) {
	return s.interpretations.CountDocuments(ctx, bson.M{})
}

// ============================================================================
// STATS OPERATIONS
// ============================================================================

// Stats holds general statistics.
type Stats struct {
	PendingQueue     int64 `json:"pending_queue"`
	RejectedQueue    int64 `json:"rejected_queue"`
	ApprovedArticles int64 `json:"approved_articles"`
	HiddenArticles   int64 `json:"hidden_articles"`
	Interpretations  int64 `json:"interpretations"`
}

// GetStats returns general statistics.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var err error
	stats.PendingQueue, err = s.queue.CountDocuments(ctx, bson.M{"status": models.QueueStatusPending})
	if err != nil {
		return nil, err
	}

	stats.RejectedQueue, err = s.queue.CountDocuments(ctx, bson.M{"status": models.QueueStatusRejected})
	if err != nil {
		return nil, err
	}

	stats.ApprovedArticles, err = s.articles.CountDocuments(ctx, bson.M{"status": models.ArticleStatusApproved})
	if err != nil {
		return nil, err
	}

	stats.HiddenArticles, err = s.articles.CountDocuments(ctx, bson.M{"status": models.ArticleStatusHidden})
	if err != nil {
		return nil, err
	}

	stats.Interpretations, err = s.interpretations.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
