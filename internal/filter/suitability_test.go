package filter

import (
	"testing"

	"github.com/infoai1/spiritual-reflections/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallConfig is a minimal table so expected scores are easy to follow.
func smallConfig() Config {
	return Config{
		Positive: []KeywordGroup{
			{Name: "kindness", Keywords: []string{"kind", "good"}},
			{Name: "many", Keywords: []string{"a1", "a2", "a3", "a4", "a5"}},
		},
		Negative: []KeywordGroup{
			{Name: "harm", Keywords: []string{"bad", "worse"}},
		},
		Categories: []Category{
			{
				Category: models.Category{ID: "first", Name: "First"},
				Keywords: KeywordTiers{High: []string{"alpha"}, Medium: []string{"beta"}, Low: []string{"gamma"}},
			},
			{
				Category: models.Category{ID: "second", Name: "Second"},
				Keywords: KeywordTiers{High: []string{"delta"}},
			},
		},
		Reasons: map[string]string{"kindness": "shows kindness"},
	}
}

func TestScoreArticle_OceanConservation(t *testing.T) {
	f := NewDefault()

	v := f.ScoreArticle(models.ArticleRecord{Title: "Scientists discover breakthrough in ocean conservation"})

	// ocean (nature), scientist + breakthrough (science), conservation
	// (environment), breakthrough (health)
	assert.Equal(t, 5, v.PositiveScore)
	assert.Equal(t, 0, v.NegativeScore)
	assert.Equal(t, 5, v.Score)
	assert.True(t, v.IsRecommended)
	assert.Equal(t, []string{"nature", "science", "environment"}, v.Reasons)
}

func TestScoreArticle_TerroristAttack(t *testing.T) {
	f := NewDefault()

	v := f.ScoreArticle(models.ArticleRecord{Title: "Terrorist attack kills dozens in bombing"})

	// terrorist, attack, bomb
	assert.Equal(t, 9, v.NegativeScore)
	assert.Equal(t, 0, v.PositiveScore)
	assert.Equal(t, -9, v.Score)
	assert.False(t, v.IsRecommended)
}

func TestScoreArticle_Empty(t *testing.T) {
	f := NewDefault()

	v := f.ScoreArticle(models.ArticleRecord{})

	assert.Equal(t, 0, v.Score)
	assert.False(t, v.IsRecommended)
	assert.Empty(t, v.Reasons)
}

func TestScoreArticle_NegativeDominance(t *testing.T) {
	f := New(smallConfig())

	v := f.ScoreArticle(models.ArticleRecord{Title: "a1 a2 a3 a4 a5 kind good", Content: "bad"})

	assert.Equal(t, 7, v.PositiveScore)
	assert.Equal(t, 3, v.NegativeScore)
	assert.Equal(t, 4, v.Score)
	assert.False(t, v.IsRecommended)
}

func TestScoreArticle_KeywordCountsOnce(t *testing.T) {
	f := New(smallConfig())

	v := f.ScoreArticle(models.ArticleRecord{Title: "kind kind kind", Description: "KIND"})

	assert.Equal(t, 1, v.PositiveScore)
	assert.Equal(t, []string{"kindness"}, v.Reasons)
}

func TestScoreArticle_ReasonsCap(t *testing.T) {
	f := NewDefault()

	v := f.ScoreArticle(models.ArticleRecord{
		Title:       "Ocean research on a planet",
		Description: "climate health innovation community wisdom amazing",
	})

	assert.Len(t, v.Reasons, maxReasons)
	assert.Equal(t, []string{"nature", "science", "space"}, v.Reasons)
	assert.Greater(t, v.PositiveScore, maxReasons)
}

func TestScoreArticle_Deterministic(t *testing.T) {
	f := NewDefault()
	a := models.ArticleRecord{
		Title:       "Volunteers restore a river forest",
		Description: "The community came together",
		Content:     "A remarkable recovery after years of work",
	}

	assert.Equal(t, f.ScoreArticle(a), f.ScoreArticle(a))
	assert.Equal(t, f.ScoreCategoryArticle(a, "nature"), f.ScoreCategoryArticle(a, "nature"))
}

func TestNew_CopiesConfig(t *testing.T) {
	cfg := smallConfig()
	f := New(cfg)

	cfg.Positive[0].Keywords[0] = "changed"
	cfg.Categories[0].Keywords.High[0] = "changed"

	assert.Equal(t, 1, f.ScoreArticle(models.ArticleRecord{Title: "kind"}).PositiveScore)
	assert.Equal(t, 10, f.ScoreCategoryArticle(models.ArticleRecord{Title: "alpha"}, "first").CategoryScore)
}

func TestNew_LowercasesKeywords(t *testing.T) {
	cfg := smallConfig()
	cfg.Positive = []KeywordGroup{{Name: "loud", Keywords: []string{"HOPE", ""}}}
	f := New(cfg)

	v := f.ScoreArticle(models.ArticleRecord{Title: "Hope returns"})
	assert.Equal(t, 1, v.PositiveScore)

	// An empty keyword must not match everything.
	v = f.ScoreArticle(models.ArticleRecord{Title: "nothing here"})
	assert.Equal(t, 0, v.PositiveScore)
}

func TestSuitabilityReason(t *testing.T) {
	f := NewDefault()

	tests := []struct {
		name    string
		reasons []string
		want    string
	}{
		{"no reasons", nil, defaultReason},
		{"single", []string{"nature"}, "reflects on God's creation in nature"},
		{"joined", []string{"nature", "science"}, "reflects on God's creation in nature, scientific discovery reveals divine wisdom"},
		{"undescribed", []string{"unknown"}, ""},
		{"partly described", []string{"unknown", "space"}, "cosmic wonders demonstrate Creator's vastness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, f.SuitabilityReason(Verdict{Reasons: tt.reasons}))
		})
	}
}
