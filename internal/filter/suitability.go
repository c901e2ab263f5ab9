package filter

import (
	"slices"
	"strings"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const (
	// negativeWeight is added to the negative score for every negative keyword hit.
	negativeWeight = 3

	// maxReasons caps the reason groups reported on a verdict.
	maxReasons = 3

	defaultReason = "suitable for spiritual reflection"
)

// Verdict is the suitability of one article for spiritual reflection.
type Verdict struct {
	Score         int      `json:"score"`
	PositiveScore int      `json:"positive_score"`
	NegativeScore int      `json:"negative_score"`
	Reasons       []string `json:"reasons"`
	IsRecommended bool     `json:"is_recommended"`
}

// Filter scores articles against an immutable keyword configuration.
// It holds no mutable state and is safe for concurrent use.
type Filter struct {
	positive   []KeywordGroup
	negative   []KeywordGroup
	categories []Category
	byID       map[string]int
	reasons    map[string]string
}

// New builds a Filter from cfg. The configuration is copied, so later changes
// to cfg do not affect the Filter.
func New(cfg Config) *Filter {
	f := &Filter{
		positive:   copyGroups(cfg.Positive),
		negative:   copyGroups(cfg.Negative),
		categories: make([]Category, 0, len(cfg.Categories)),
		byID:       make(map[string]int, len(cfg.Categories)),
		reasons:    make(map[string]string, len(cfg.Reasons)),
	}

	for _, cat := range cfg.Categories {
		if _, dup := f.byID[cat.ID]; dup {
			continue
		}
		c := cat
		c.Keywords = KeywordTiers{
			High:   lowerAll(cat.Keywords.High),
			Medium: lowerAll(cat.Keywords.Medium),
			Low:    lowerAll(cat.Keywords.Low),
		}
		c.SearchQueries = append([]string(nil), cat.SearchQueries...)
		c.QuranicConcepts = append([]string(nil), cat.QuranicConcepts...)
		f.byID[c.ID] = len(f.categories)
		f.categories = append(f.categories, c)
	}

	for k, v := range cfg.Reasons {
		f.reasons[k] = v
	}
	return f
}

// NewDefault builds a Filter from the built-in tables.
func NewDefault() *Filter {
	return New(DefaultConfig())
}

func copyGroups(groups []KeywordGroup) []KeywordGroup {
	out := make([]KeywordGroup, len(groups))
	for i, g := range groups {
		out[i] = KeywordGroup{Name: g.Name, Keywords: lowerAll(g.Keywords)}
	}
	return out
}

// articleText is the lower-cased text every matcher runs against.
func articleText(a models.ArticleRecord) string {
	return strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
}

// ScoreArticle computes the suitability verdict of a single article.
// Keywords match as raw substrings of the lower-cased text, and each keyword
// counts at most once however often it occurs.
func (f *Filter) ScoreArticle(article models.ArticleRecord) Verdict {
	return f.scoreText(articleText(article))
}

func (f *Filter) scoreText(text string) Verdict {
	var positive, negative int
	reasons := make([]string, 0, maxReasons)

	for _, group := range f.positive {
		for _, kw := range group.Keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			positive++
			if len(reasons) < maxReasons && !slices.Contains(reasons, group.Name) {
				reasons = append(reasons, group.Name)
			}
		}
	}

	for _, group := range f.negative {
		for _, kw := range group.Keywords {
			if strings.Contains(text, kw) {
				negative += negativeWeight
			}
		}
	}

	score := positive - negative
	return Verdict{
		Score:         score,
		PositiveScore: positive,
		NegativeScore: negative,
		Reasons:       reasons,
		IsRecommended: score > 0 && negative < negativeWeight,
	}
}

// SuitabilityReason explains in words why a verdict's article suits reflection.
// A verdict whose reasons have no description yields an empty string.
func (f *Filter) SuitabilityReason(v Verdict) string {
	if len(v.Reasons) == 0 {
		return defaultReason
	}
	parts := make([]string, 0, len(v.Reasons))
	for _, r := range v.Reasons {
		if desc, ok := f.reasons[r]; ok && desc != "" {
			parts = append(parts, desc)
		}
	}
	return strings.Join(parts, ", ")
}
