package filter

import (
	"strings"
	"testing"

	"github.com/infoai1/spiritual-reflections/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCategoryArticle_UnknownCategory(t *testing.T) {
	f := NewDefault()

	v := f.ScoreCategoryArticle(models.ArticleRecord{Title: "Anything"}, "sports")

	assert.Equal(t, 0, v.Score)
	assert.False(t, v.CategoryMatch)
	assert.Equal(t, "Unknown category", v.Reason)
}

func TestScoreCategoryArticle_Tiers(t *testing.T) {
	f := New(smallConfig())

	v := f.ScoreCategoryArticle(models.ArticleRecord{Title: "alpha beta gamma kind"}, "first")

	assert.Equal(t, 17, v.CategoryScore)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, v.MatchedKeywords)
	assert.Equal(t, 0, v.QualityScore)
	assert.Equal(t, 10, v.SpiritualBonus)
	assert.Equal(t, 0, v.NegativePenalty)
	assert.Equal(t, 27, v.Score)
	assert.True(t, v.CategoryMatch)
	assert.True(t, v.IsBestCandidate)
	assert.Empty(t, v.Reason)
}

func TestScoreCategoryArticle_Bonuses(t *testing.T) {
	f := New(smallConfig())

	tests := []struct {
		name        string
		title       string
		wantBonus   int
		wantPenalty int
		wantMatch   bool
	}{
		{"recommended", "beta kind", 10, 0, true},
		{"positive but not recommended", "beta a1 a2 a3 a4 a5 bad", 5, 9, true},
		{"no positive", "beta", 0, 0, true},
		{"low tier only", "gamma kind", 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := f.ScoreCategoryArticle(models.ArticleRecord{Title: tt.title}, "first")
			assert.Equal(t, tt.wantBonus, v.SpiritualBonus)
			assert.Equal(t, tt.wantPenalty, v.NegativePenalty)
			assert.Equal(t, tt.wantMatch, v.CategoryMatch)
			assert.Equal(t, v.CategoryScore+v.QualityScore+v.SpiritualBonus-v.NegativePenalty, v.Score)
		})
	}
}

func TestScoreCategoryArticle_MatchedKeywordsCapped(t *testing.T) {
	f := NewDefault()

	article := models.ArticleRecord{Title: "Courage and resilience: how she never gave up"}
	article.Content = "Against all odds, a triumph of perseverance. " +
		"An inspiring, remarkable story to overcome hardship."

	v := f.ScoreCategoryArticle(article, "inspiration")

	assert.Len(t, v.MatchedKeywords, maxMatchedReport)
	assert.GreaterOrEqual(t, v.CategoryScore, 90)
}

func TestScoreCategoryArticle_HighTierMonotonic(t *testing.T) {
	f := NewDefault()
	base := models.ArticleRecord{Title: "A family faces a challenge", Description: "They hope for strength"}

	before := f.ScoreCategoryArticle(base, "inspiration")
	base.Content = "Their courage helped them overcome it"
	after := f.ScoreCategoryArticle(base, "inspiration")

	assert.GreaterOrEqual(t, after.CategoryScore, before.CategoryScore+2*highKeywordPoints)
}

func TestAssessQuality(t *testing.T) {
	tests := []struct {
		name string
		text string
		want QualityIndicators
	}{
		{
			name: "quotes numbers and narrative",
			text: `he said "we did it" in 2024 after 3 tries and 5 days`,
			want: QualityIndicators{HasQuotes: true, HasNumbers: true, HasPersonalStory: true},
		},
		{
			name: "two numbers are not enough",
			text: "10 of 20",
			want: QualityIndicators{},
		},
		{
			name: "emotional and outcome",
			text: "an incredible first ascent",
			want: QualityIndicators{HasEmotionalWords: true, HasPositiveOutcome: true},
		},
		{
			name: "long",
			text: strings.Repeat("x", minTextLength+1),
			want: QualityIndicators{HasProperLength: true},
		},
		{
			name: "exactly at length threshold",
			text: strings.Repeat("x", minTextLength),
			want: QualityIndicators{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assessQuality(tt.text))
		})
	}
}

func TestQualityIndicators_Score(t *testing.T) {
	all := QualityIndicators{true, true, true, true, true, true}
	assert.Equal(t, 23, all.Score())
	assert.Equal(t, 0, QualityIndicators{}.Score())
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, utf16Len(""))
	assert.Equal(t, 3, utf16Len("abc"))
	assert.Equal(t, 1, utf16Len("é"))
	assert.Equal(t, 2, utf16Len("😀"))
}

func TestBestArticlesByCategory(t *testing.T) {
	f := New(smallConfig())
	articles := []models.ArticleRecord{
		{ID: "a", Title: "alpha kind"},
		{ID: "b", Title: "beta kind"},
		{ID: "c", Title: "alpha beta kind"},
		{ID: "d", Title: "alpha bad"},
		{ID: "e", Title: "gamma kind"},
		{ID: "f", Title: "alpha good"},
	}

	rankings := f.BestArticlesByCategory(articles)
	require.Len(t, rankings, 2)

	first := rankings["first"]
	assert.Equal(t, "First", first.Category.Name)
	assert.Equal(t, 4, first.Total)
	require.NotNil(t, first.Best)
	assert.Equal(t, "c", first.Best.ID)

	ids := make([]string, 0, len(first.Ranked))
	for _, sa := range first.Ranked {
		ids = append(ids, sa.ID)
		require.NotNil(t, sa.CategoryScore)
	}
	// a and f tie and keep input order.
	assert.Equal(t, []string{"c", "a", "f", "b"}, ids)
	assert.Len(t, first.TopThree, 3)

	second := rankings["second"]
	assert.Nil(t, second.Best)
	assert.Equal(t, 0, second.Total)
	assert.Empty(t, second.TopThree)
}

func TestCategories(t *testing.T) {
	f := NewDefault()

	cats := f.Categories()
	require.Len(t, cats, 4)
	assert.Equal(t, "inspiration", cats[0].ID)
	assert.Equal(t, "science", cats[1].ID)

	c, ok := f.Category("science")
	require.True(t, ok)
	assert.Equal(t, "Science", c.Name)
	assert.NotEmpty(t, c.SearchQueries)

	_, ok = f.Category("sports")
	assert.False(t, ok)
}
