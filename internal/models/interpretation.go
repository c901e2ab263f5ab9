package models

import "time"

// NewsInput is the article an interpretation is requested for.
type NewsInput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Source      string `json:"source"`
}

// CacheKey returns the id interpretations are cached under.
func (n NewsInput) CacheKey() string {
	if n.ID != "" {
		return n.ID
	}
	runes := []rune(n.Title)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

// Passage is a reference text an interpretation drew on.
type Passage struct {
	Content string `bson:"content" json:"content"`
	Source  string `bson:"source" json:"source"`
}

// Verse is a Quran verse attached to an interpretation.
type Verse struct {
	Text string `bson:"text" json:"text"`
	Ref  string `bson:"ref" json:"ref"`
}

// Interpretation is a generated devotional reflection on a news article.
type Interpretation struct {
	NewsID           string    `bson:"news_id" json:"news_id"`
	WhatHappened     string    `bson:"what_happened" json:"what_happened"`
	ExecutiveSummary string    `bson:"executive_summary" json:"executive_summary"`
	Interpretation   string    `bson:"interpretation" json:"interpretation"`
	RelevantPassages []Passage `bson:"relevant_passages" json:"relevant_passages"`
	UsedFallback     bool      `bson:"used_fallback" json:"used_fallback"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
