package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStableID(t *testing.T) {
	assert.Equal(t, "0", StableID(""))
	assert.Equal(t, "2p", StableID("a"))
	assert.Equal(t, "2e9", StableID("ab"))
	assert.Equal(t, StableID("https://example.com/x"), StableID("https://example.com/x"))
	assert.NotEqual(t, StableID("https://example.com/x"), StableID("https://example.com/y"))
}

func TestDerivedID(t *testing.T) {
	withURL := ArticleRecord{Title: "T", URL: "https://example.com/a"}
	assert.Equal(t, StableID("https://example.com/a"), withURL.DerivedID())

	titleOnly := ArticleRecord{Title: "Only a title"}
	assert.Equal(t, StableID("Only a title"), titleOnly.DerivedID())
}

func TestArticleStatusValid(t *testing.T) {
	assert.True(t, ArticleStatusApproved.Valid())
	assert.True(t, ArticleStatusHidden.Valid())
	assert.False(t, ArticleStatus("deleted").Valid())
}

func TestArticleRecord(t *testing.T) {
	a := &Article{ExternalID: "ext", Title: "T", Category: "science"}
	r := a.Record()
	assert.Equal(t, "ext", r.ID)
	assert.Equal(t, "science", r.Category)

	oid := primitive.NewObjectID()
	a = &Article{ID: oid, Title: "T"}
	assert.Equal(t, oid.Hex(), a.Record().ID)
}

func TestNewsInputCacheKey(t *testing.T) {
	assert.Equal(t, "abc", NewsInput{ID: "abc", Title: "ignored"}.CacheKey())

	long := NewsInput{Title: "0123456789012345678901234567890123456789012345678901234567890"}
	assert.Equal(t, "01234567890123456789012345678901234567890123456789", long.CacheKey())
}

func TestGetQuranicConcept(t *testing.T) {
	c := GetQuranicConcept("Sabr")
	if assert.NotNil(t, c) {
		assert.Equal(t, "Patience & Perseverance", c.Meaning)
	}
	assert.Nil(t, GetQuranicConcept("Unknown"))
}
