package models

import (
	"strconv"
	"time"
	"unicode/utf16"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArticleRecord is a raw news article as delivered by an ingestion source.
// Title is required; every other text field may be empty.
type ArticleRecord struct {
	ID          string    `bson:"id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Content     string    `bson:"content" json:"content"`
	Source      string    `bson:"source" json:"source"`
	Author      string    `bson:"author,omitempty" json:"author,omitempty"`
	URL         string    `bson:"url,omitempty" json:"url,omitempty"`
	ImageURL    string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	PublishedAt time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`

	// Category is the category a targeted fetch suggested, if any.
	Category string `bson:"category,omitempty" json:"category,omitempty"`
}

// StableID derives a deterministic identifier from a canonical field
// (URL, else title). It is a 32-bit rolling hash over UTF-16 code units,
// printed as the absolute value in base 36, so ids written by earlier
// deployments keep matching.
func StableID(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// DerivedID is the id ingestion assigns to a record: StableID of the URL,
// falling back to the title.
func (a ArticleRecord) DerivedID() string {
	if a.URL != "" {
		return StableID(a.URL)
	}
	return StableID(a.Title)
}

// ArticleStatus is the publication state of a curated article.
type ArticleStatus string

const (
	ArticleStatusApproved ArticleStatus = "approved"
	ArticleStatusHidden   ArticleStatus = "hidden"
)

// Valid reports whether s is a status an admin may set.
func (s ArticleStatus) Valid() bool {
	return s == ArticleStatusApproved || s == ArticleStatusHidden
}

// Article is a curated article stored for display.
type Article struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// ExternalID is the ArticleRecord identity the article came from.
	ExternalID string `bson:"external_id" json:"external_id"`

	// Content
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Content     string `bson:"content" json:"content"`
	Source      string `bson:"source" json:"source"`
	Author      string `bson:"author,omitempty" json:"author,omitempty"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`

	// Classification
	Category  string        `bson:"category,omitempty" json:"category,omitempty"`
	AIScore   int           `bson:"ai_score" json:"ai_score"`
	AIReasons []string      `bson:"ai_reasons,omitempty" json:"ai_reasons,omitempty"`
	Status    ArticleStatus `bson:"status" json:"status"`

	// Timing
	PublishedAt time.Time `bson:"published_at" json:"published_at"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Record converts a stored article back into the shape the scoring core reads.
func (a *Article) Record() ArticleRecord {
	id := a.ExternalID
	if id == "" {
		id = a.ID.Hex()
	}
	return ArticleRecord{
		ID:          id,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Source:      a.Source,
		Author:      a.Author,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt,
		Category:    a.Category,
	}
}

// QueueStatus is the review state of a pending queue item.
type QueueStatus string

const (
	QueueStatusPending  QueueStatus = "pending"
	QueueStatusRejected QueueStatus = "rejected"
)

// QueueItem is a fetched article waiting for admin review.
type QueueItem struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	ExternalID  string `bson:"external_id" json:"external_id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Content     string `bson:"content" json:"content"`
	Source      string `bson:"source" json:"source"`
	Author      string `bson:"author,omitempty" json:"author,omitempty"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`

	SuggestedCategory string      `bson:"suggested_category,omitempty" json:"suggested_category,omitempty"`
	AIScore           int         `bson:"ai_score" json:"ai_score"`
	AIReasons         []string    `bson:"ai_reasons" json:"ai_reasons"`
	Status            QueueStatus `bson:"status" json:"status"`

	PublishedAt time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Record converts a queue item into the shape the scoring core reads.
func (q *QueueItem) Record() ArticleRecord {
	return ArticleRecord{
		ID:          q.ExternalID,
		Title:       q.Title,
		Description: q.Description,
		Content:     q.Content,
		Source:      q.Source,
		Author:      q.Author,
		URL:         q.URL,
		ImageURL:    q.ImageURL,
		PublishedAt: q.PublishedAt,
		Category:    q.SuggestedCategory,
	}
}
