package filter

import (
	"regexp"
	"sort"
	"strings"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

// Tier weights and policy thresholds for category fit.
const (
	highKeywordPoints   = 10
	mediumKeywordPoints = 5
	lowKeywordPoints    = 2

	quotesBonus          = 3
	numbersBonus         = 2
	lengthBonus          = 5
	emotionalBonus       = 5
	personalStoryBonus   = 4
	positiveOutcomeBonus = 4

	recommendedBonus = 10
	positiveBonus    = 5
	penaltyFactor    = 3

	minCategoryMatch     = 5
	minBestTotal         = 20
	minBestCategoryScore = 10

	minNumbers       = 3
	minTextLength    = 200
	maxMatchedReport = 5
	topN             = 3

	unknownCategoryReason = "Unknown category"
)

var (
	quotedSpan = regexp.MustCompile(`["'].*?["']`)
	digitRun   = regexp.MustCompile(`\d+`)

	emotionalWords      = []string{"amazing", "remarkable", "incredible", "inspiring", "extraordinary", "miracle", "breakthrough"}
	personalStoryCues   = []string{"he said", "she said", "told", "explained", "family", "community", "years"}
	positiveOutcomeCues = []string{"success", "achieve", "overcome", "recover", "discover", "found", "reveal", "first"}
)

// QualityIndicators are the independent story-quality heuristics of a text.
type QualityIndicators struct {
	HasQuotes          bool `json:"has_quotes"`
	HasNumbers         bool `json:"has_numbers"`
	HasProperLength    bool `json:"has_proper_length"`
	HasEmotionalWords  bool `json:"has_emotional_words"`
	HasPersonalStory   bool `json:"has_personal_story"`
	HasPositiveOutcome bool `json:"has_positive_outcome"`
}

// Score sums the bonuses of the indicators that hold.
func (q QualityIndicators) Score() int {
	score := 0
	if q.HasQuotes {
		score += quotesBonus
	}
	if q.HasNumbers {
		score += numbersBonus
	}
	if q.HasProperLength {
		score += lengthBonus
	}
	if q.HasEmotionalWords {
		score += emotionalBonus
	}
	if q.HasPersonalStory {
		score += personalStoryBonus
	}
	if q.HasPositiveOutcome {
		score += positiveOutcomeBonus
	}
	return score
}

// CategoryVerdict is the fit of one article for one category.
// Callers must check CategoryMatch before relying on the other fields.
type CategoryVerdict struct {
	Score           int               `json:"score"`
	CategoryScore   int               `json:"category_score"`
	QualityScore    int               `json:"quality_score"`
	SpiritualBonus  int               `json:"spiritual_bonus"`
	NegativePenalty int               `json:"negative_penalty"`
	CategoryMatch   bool              `json:"category_match"`
	MatchedKeywords []string          `json:"matched_keywords,omitempty"`
	Quality         QualityIndicators `json:"quality_indicators"`
	Suitability     Verdict           `json:"suitability"`
	IsBestCandidate bool              `json:"is_best_candidate"`
	Reason          string            `json:"reason,omitempty"`
}

// ScoredArticle is an article together with the verdicts computed for it.
type ScoredArticle struct {
	models.ArticleRecord
	Suitability   Verdict          `json:"suitability"`
	CategoryScore *CategoryVerdict `json:"category_score,omitempty"`
}

// CategoryRanking is the best-of list of one category.
type CategoryRanking struct {
	Category models.Category `json:"category"`
	Best     *ScoredArticle  `json:"best"`
	TopThree []ScoredArticle `json:"top_three"`
	Total    int             `json:"total"`

	// Ranked holds every qualifying article, best first.
	Ranked []ScoredArticle `json:"-"`
}

// Categories returns the configured categories in priority order of the table.
func (f *Filter) Categories() []Category {
	out := make([]Category, len(f.categories))
	copy(out, f.categories)
	return out
}

// Category returns a configured category by id.
func (f *Filter) Category(id string) (Category, bool) {
	i, ok := f.byID[id]
	if !ok {
		return Category{}, false
	}
	return f.categories[i], true
}

// ScoreCategoryArticle computes how well an article fits a category. An
// unknown category yields a zero verdict with Reason set rather than an error,
// so one bad id cannot abort a batch.
func (f *Filter) ScoreCategoryArticle(article models.ArticleRecord, categoryID string) CategoryVerdict {
	i, ok := f.byID[categoryID]
	if !ok {
		return CategoryVerdict{Reason: unknownCategoryReason}
	}
	text := articleText(article)
	return f.scoreCategoryText(text, &f.categories[i], f.scoreText(text))
}

func (f *Filter) scoreCategoryText(text string, cat *Category, suitability Verdict) CategoryVerdict {
	var categoryScore int
	var matched []string

	tiers := []struct {
		keywords []string
		points   int
	}{
		{cat.Keywords.High, highKeywordPoints},
		{cat.Keywords.Medium, mediumKeywordPoints},
		{cat.Keywords.Low, lowKeywordPoints},
	}
	for _, tier := range tiers {
		for _, kw := range tier.keywords {
			if strings.Contains(text, kw) {
				categoryScore += tier.points
				matched = append(matched, kw)
			}
		}
	}
	if len(matched) > maxMatchedReport {
		matched = matched[:maxMatchedReport]
	}

	quality := assessQuality(text)
	qualityScore := quality.Score()

	spiritualBonus := 0
	switch {
	case suitability.IsRecommended:
		spiritualBonus = recommendedBonus
	case suitability.Score > 0:
		spiritualBonus = positiveBonus
	}
	negativePenalty := suitability.NegativeScore * penaltyFactor

	total := categoryScore + qualityScore + spiritualBonus - negativePenalty

	return CategoryVerdict{
		Score:           total,
		CategoryScore:   categoryScore,
		QualityScore:    qualityScore,
		SpiritualBonus:  spiritualBonus,
		NegativePenalty: negativePenalty,
		CategoryMatch:   categoryScore >= minCategoryMatch,
		MatchedKeywords: matched,
		Quality:         quality,
		Suitability:     suitability,
		IsBestCandidate: total >= minBestTotal && categoryScore >= minBestCategoryScore && suitability.IsRecommended,
	}
}

func assessQuality(text string) QualityIndicators {
	return QualityIndicators{
		HasQuotes:          quotedSpan.MatchString(text),
		HasNumbers:         len(digitRun.FindAllStringIndex(text, minNumbers)) >= minNumbers,
		HasProperLength:    utf16Len(text) > minTextLength,
		HasEmotionalWords:  containsAny(text, emotionalWords),
		HasPersonalStory:   containsAny(text, personalStoryCues),
		HasPositiveOutcome: containsAny(text, positiveOutcomeCues),
	}
}

// utf16Len measures text in UTF-16 code units, the unit the length
// threshold was tuned in.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// BestArticlesByCategory ranks articles within every configured category.
// Only articles that match the category and are recommended qualify; ties
// keep input order.
func (f *Filter) BestArticlesByCategory(articles []models.ArticleRecord) map[string]CategoryRanking {
	texts := make([]string, len(articles))
	verdicts := make([]Verdict, len(articles))
	for i, a := range articles {
		texts[i] = articleText(a)
		verdicts[i] = f.scoreText(texts[i])
	}

	result := make(map[string]CategoryRanking, len(f.categories))
	for ci := range f.categories {
		cat := &f.categories[ci]

		ranked := make([]ScoredArticle, 0)
		for i, a := range articles {
			cv := f.scoreCategoryText(texts[i], cat, verdicts[i])
			if !cv.CategoryMatch || !cv.Suitability.IsRecommended {
				continue
			}
			ranked = append(ranked, ScoredArticle{
				ArticleRecord: a,
				Suitability:   verdicts[i],
				CategoryScore: &cv,
			})
		}

		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].CategoryScore.Score > ranked[j].CategoryScore.Score
		})

		ranking := CategoryRanking{
			Category: cat.Category,
			TopThree: ranked[:min(topN, len(ranked))],
			Total:    len(ranked),
			Ranked:   ranked,
		}
		if len(ranked) > 0 {
			best := ranked[0]
			ranking.Best = &best
		}
		result[cat.ID] = ranking
	}
	return result
}
