package filter

import (
	"sort"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const (
	defaultBestPerCategory = 3
	defaultMaxAll          = 12
	defaultNewsLimit       = 10

	// maxPaddingNegative bounds the negative score of articles used to pad
	// a short FilterNews result.
	maxPaddingNegative = 5
)

// SelectOptions bounds the output of FilterAndCategorize. Zero values take
// the defaults.
type SelectOptions struct {
	BestPerCategory int
	MaxAll          int
}

func (o SelectOptions) withDefaults() SelectOptions {
	if o.BestPerCategory <= 0 {
		o.BestPerCategory = defaultBestPerCategory
	}
	if o.MaxAll <= 0 {
		o.MaxAll = defaultMaxAll
	}
	return o
}

// Section is the selection of one category.
type Section struct {
	Category models.Category `json:"category"`
	Articles []ScoredArticle `json:"articles"`
}

// Categorized is a mutually exclusive selection: no article id appears in
// more than one section, nor in both a section and All.
type Categorized struct {
	Sections []Section       `json:"sections"`
	All      []ScoredArticle `json:"all"`
}

// Section returns the section for a category id.
func (c Categorized) Section(id string) (Section, bool) {
	for _, s := range c.Sections {
		if s.Category.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Count is the number of articles across all lists.
func (c Categorized) Count() int {
	n := len(c.All)
	for _, s := range c.Sections {
		n += len(s.Articles)
	}
	return n
}

// DedupeByID collapses articles sharing an id. The last record wins but
// keeps the position of the first occurrence. Articles without an id are
// kept as they are.
func DedupeByID(articles []models.ArticleRecord) []models.ArticleRecord {
	out := make([]models.ArticleRecord, 0, len(articles))
	index := make(map[string]int, len(articles))
	for _, a := range articles {
		if a.ID == "" {
			out = append(out, a)
			continue
		}
		if i, ok := index[a.ID]; ok {
			out[i] = a
			continue
		}
		index[a.ID] = len(out)
		out = append(out, a)
	}
	return out
}

// FilterAndCategorize picks the best articles for each category and a
// general list from the rest. Categories are filled in configured order, and
// an article placed in one category is skipped by later ones.
func (f *Filter) FilterAndCategorize(articles []models.ArticleRecord, opts SelectOptions) Categorized {
	opts = opts.withDefaults()
	unique := DedupeByID(withIDs(articles))
	rankings := f.BestArticlesByCategory(unique)

	used := make(map[string]struct{})
	result := Categorized{Sections: make([]Section, 0, len(f.categories))}

	for _, cat := range f.categories {
		ranking := rankings[cat.ID]
		picked := make([]ScoredArticle, 0, opts.BestPerCategory)
		for _, sa := range ranking.Ranked {
			if len(picked) == opts.BestPerCategory {
				break
			}
			if _, taken := used[sa.ID]; taken {
				continue
			}
			used[sa.ID] = struct{}{}
			picked = append(picked, sa)
		}
		result.Sections = append(result.Sections, Section{Category: cat.Category, Articles: picked})
	}

	rest := make([]models.ArticleRecord, 0, len(unique))
	for _, a := range unique {
		if _, taken := used[a.ID]; !taken {
			rest = append(rest, a)
		}
	}

	all := f.rank(rest)
	recommended := make([]ScoredArticle, 0, len(all))
	for _, sa := range all {
		if sa.Suitability.IsRecommended {
			recommended = append(recommended, sa)
		}
	}
	result.All = recommended[:min(opts.MaxAll, len(recommended))]
	return result
}

// withIDs fills missing ids the way ingestion derives them, so exclusivity
// holds for records that arrive without one.
func withIDs(articles []models.ArticleRecord) []models.ArticleRecord {
	out := make([]models.ArticleRecord, len(articles))
	for i, a := range articles {
		if a.ID == "" {
			a.ID = a.DerivedID()
		}
		out[i] = a
	}
	return out
}

// FilterNews returns up to limit articles, recommended ones first. When too
// few are recommended the list is padded with mildly negative articles.
func (f *Filter) FilterNews(articles []models.ArticleRecord, limit int) []ScoredArticle {
	if limit <= 0 {
		limit = defaultNewsLimit
	}

	ranked := f.rank(articles)
	out := make([]ScoredArticle, 0, limit)
	for _, sa := range ranked {
		if len(out) == limit {
			return out
		}
		if sa.Suitability.IsRecommended {
			out = append(out, sa)
		}
	}
	for _, sa := range ranked {
		if len(out) == limit {
			break
		}
		if !sa.Suitability.IsRecommended && sa.Suitability.NegativeScore < maxPaddingNegative {
			out = append(out, sa)
		}
	}
	return out
}

// rank scores articles and stable-sorts them by suitability score.
func (f *Filter) rank(articles []models.ArticleRecord) []ScoredArticle {
	scored := make([]ScoredArticle, len(articles))
	for i, a := range articles {
		scored[i] = ScoredArticle{ArticleRecord: a, Suitability: f.ScoreArticle(a)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Suitability.Score > scored[j].Suitability.Score
	})
	return scored
}
