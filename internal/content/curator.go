// Package content curates news for Spiritual Reflections: it gathers
// articles, feeds the review queue and produces interpretations.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/infoai1/spiritual-reflections/internal/filter"
	"github.com/infoai1/spiritual-reflections/internal/interpret"
	"github.com/infoai1/spiritual-reflections/internal/models"
	"github.com/infoai1/spiritual-reflections/internal/newsapi"
)

const (
	SourceCurated = "curated"
	SourceFresh   = "fresh"

	refillPerCategory = 10
	refillGeneral     = 20
	feedMaxPerSource  = 10
	curatedPoolSize   = 100
)

// ErrMissingTitle is returned by Interpret when the news has no title.
var ErrMissingTitle = errors.New("news title is required")

// NewsSource fetches articles from a news API.
type NewsSource interface {
	TopHeadlines(ctx context.Context, pageSize int) ([]models.ArticleRecord, error)
	ByCategory(ctx context.Context, categoryID string, searchQueries []string, pageSize int) ([]models.ArticleRecord, error)
	Search(ctx context.Context, query string, pageSize int) ([]models.ArticleRecord, error)
}

// FeedSource fetches articles from RSS and Atom feeds.
type FeedSource interface {
	FetchAll(ctx context.Context, maxPerFeed int) []models.ArticleRecord
}

// ArticleStore holds curated articles and the review queue.
type ArticleStore interface {
	GetApprovedArticles(ctx context.Context, limit int, category string) ([]models.Article, error)
	AddToQueue(ctx context.Context, items []models.QueueItem) (added, skipped int, err error)
}

// Interpreter generates reflections.
type Interpreter interface {
	Configured() bool
	Generate(ctx context.Context, news models.NewsInput) (*models.Interpretation, error)
}

// InterpretationCache stores generated reflections.
type InterpretationCache interface {
	Get(ctx context.Context, newsID string) (*models.Interpretation, bool)
	Set(ctx context.Context, interp *models.Interpretation) error
}

// Curator composes the filter with its collaborators. Any collaborator but
// the filter may be nil.
type Curator struct {
	filter *filter.Filter
	news   NewsSource
	feeds  FeedSource
	store  ArticleStore
	llm    Interpreter
	cache  InterpretationCache
}

// Options holds the collaborators of a Curator.
type Options struct {
	News  NewsSource
	Feeds FeedSource
	Store ArticleStore
	LLM   Interpreter
	Cache InterpretationCache
}

// NewCurator creates a new curator.
func NewCurator(f *filter.Filter, opts Options) *Curator {
	return &Curator{
		filter: f,
		news:   opts.News,
		feeds:  opts.Feeds,
		store:  opts.Store,
		llm:    opts.LLM,
		cache:  opts.Cache,
	}
}

// Filter returns the scoring filter.
func (c *Curator) Filter() *filter.Filter {
	return c.filter
}

// ============================================================================
// FETCHING
// ============================================================================

// Fetch gathers articles for every category, general headlines and the RSS
// feeds concurrently, then removes duplicates. A failing category falls back
// to sample news and a failing feed is skipped.
func (c *Curator) Fetch(ctx context.Context, perCategory, general int) ([]models.ArticleRecord, error) {
	categories := c.filter.Categories()
	byCategory := make([][]models.ArticleRecord, len(categories))
	var headlines, feedItems []models.ArticleRecord

	g, gctx := errgroup.WithContext(ctx)

	for i, cat := range categories {
		i, cat := i, cat
		g.Go(func() error {
			byCategory[i] = c.fetchCategory(gctx, cat, perCategory)
			return nil
		})
	}

	g.Go(func() error {
		headlines = c.fetchHeadlines(gctx, general)
		return nil
	})

	if c.feeds != nil {
		g.Go(func() error {
			feedItems = c.feeds.FetchAll(gctx, feedMaxPerSource)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []models.ArticleRecord
	for _, items := range byCategory {
		all = append(all, items...)
	}
	all = append(all, headlines...)
	all = append(all, feedItems...)

	unique := filter.DedupeByID(all)
	log.Info().
		Int("fetched", len(all)).
		Int("unique", len(unique)).
		Msg("Fetched news")
	return unique, nil
}

func (c *Curator) fetchCategory(ctx context.Context, cat filter.Category, n int) []models.ArticleRecord {
	if c.news == nil {
		return newsapi.SampleNewsByCategory(cat.ID)
	}
	items, err := c.news.ByCategory(ctx, cat.ID, cat.SearchQueries, n)
	if err != nil {
		log.Warn().Err(err).Str("category", cat.ID).Msg("Category fetch failed, using sample news")
		return newsapi.SampleNewsByCategory(cat.ID)
	}
	return items
}

func (c *Curator) fetchHeadlines(ctx context.Context, n int) []models.ArticleRecord {
	if c.news == nil {
		return newsapi.SampleNews()
	}
	items, err := c.news.TopHeadlines(ctx, n)
	if err != nil {
		log.Warn().Err(err).Msg("Headline fetch failed, using sample news")
		return newsapi.SampleNews()
	}
	return items
}

// ============================================================================
// FEEDS
// ============================================================================

// CategorizedResult is the categorized feed together with where it came from.
type CategorizedResult struct {
	filter.Categorized
	Source string `json:"source"`
}

// CategorizedFeed returns curated articles grouped by category when any are
// approved, otherwise a fresh selection from the news sources.
func (c *Curator) CategorizedFeed(ctx context.Context, limit int) (*CategorizedResult, error) {
	opts := filter.SelectOptions{MaxAll: limit}

	curated, err := c.approved(ctx)
	if err != nil {
		return nil, err
	}
	if len(curated) > 0 {
		return &CategorizedResult{Categorized: c.groupCurated(curated, opts), Source: SourceCurated}, nil
	}

	fresh, err := c.Fetch(ctx, feedMaxPerSource, limit)
	if err != nil {
		return nil, err
	}
	return &CategorizedResult{Categorized: c.filter.FilterAndCategorize(fresh, opts), Source: SourceFresh}, nil
}

// FeedResult is a flat article list together with where it came from.
type FeedResult struct {
	Articles []filter.ScoredArticle `json:"articles"`
	Source   string                 `json:"source"`
}

// Feed returns up to limit curated articles, otherwise the best of fresh
// headlines.
func (c *Curator) Feed(ctx context.Context, limit int) (*FeedResult, error) {
	if limit <= 0 {
		limit = 10
	}

	curated, err := c.approved(ctx)
	if err != nil {
		return nil, err
	}
	if len(curated) > 0 {
		curated = curated[:min(limit, len(curated))]
		out := make([]filter.ScoredArticle, len(curated))
		for i, a := range curated {
			out[i] = filter.ScoredArticle{ArticleRecord: a, Suitability: c.filter.ScoreArticle(a)}
		}
		return &FeedResult{Articles: out, Source: SourceCurated}, nil
	}

	headlines := c.fetchHeadlines(ctx, limit*3)
	return &FeedResult{Articles: c.filter.FilterNews(headlines, limit), Source: SourceFresh}, nil
}

func (c *Curator) approved(ctx context.Context) ([]models.ArticleRecord, error) {
	if c.store == nil {
		return nil, nil
	}
	articles, err := c.store.GetApprovedArticles(ctx, curatedPoolSize, "")
	if err != nil {
		return nil, fmt.Errorf("load approved articles: %w", err)
	}
	records := make([]models.ArticleRecord, len(articles))
	for i := range articles {
		records[i] = articles[i].Record()
	}
	return records, nil
}

// groupCurated places approved articles under the category an editor gave
// them. The remainder, in stored order, fills the general list.
func (c *Curator) groupCurated(articles []models.ArticleRecord, opts filter.SelectOptions) filter.Categorized {
	if opts.BestPerCategory <= 0 {
		opts.BestPerCategory = 3
	}
	if opts.MaxAll <= 0 {
		opts.MaxAll = 12
	}

	articles = filter.DedupeByID(articles)
	used := make(map[string]struct{})
	result := filter.Categorized{}

	for _, cat := range c.filter.Categories() {
		picked := []filter.ScoredArticle{}
		for _, a := range articles {
			if len(picked) == opts.BestPerCategory {
				break
			}
			if a.Category != cat.ID {
				continue
			}
			if _, taken := used[a.ID]; taken {
				continue
			}
			used[a.ID] = struct{}{}
			picked = append(picked, filter.ScoredArticle{ArticleRecord: a, Suitability: c.filter.ScoreArticle(a)})
		}
		result.Sections = append(result.Sections, filter.Section{Category: cat.Category, Articles: picked})
	}

	result.All = []filter.ScoredArticle{}
	for _, a := range articles {
		if len(result.All) == opts.MaxAll {
			break
		}
		if _, taken := used[a.ID]; taken {
			continue
		}
		result.All = append(result.All, filter.ScoredArticle{ArticleRecord: a, Suitability: c.filter.ScoreArticle(a)})
	}
	return result
}

// ============================================================================
// REVIEW QUEUE
// ============================================================================

// RefillResult summarises one queue refill.
type RefillResult struct {
	Fetched     int `json:"fetched"`
	Recommended int `json:"recommended"`
	Added       int `json:"added"`
	Skipped     int `json:"skipped"`
}

// RefillQueue fetches fresh news and queues every recommended article for
// review. Articles already queued are skipped.
func (c *Curator) RefillQueue(ctx context.Context) (*RefillResult, error) {
	if c.store == nil {
		return nil, errors.New("no article store configured")
	}

	articles, err := c.Fetch(ctx, refillPerCategory, refillGeneral)
	if err != nil {
		return nil, err
	}
	return c.enqueue(ctx, articles)
}

// RefillQueueFromSearch queues the recommended articles among the results
// of a news search.
func (c *Curator) RefillQueueFromSearch(ctx context.Context, query string) (*RefillResult, error) {
	if c.store == nil {
		return nil, errors.New("no article store configured")
	}
	if c.news == nil {
		return nil, errors.New("no news source configured")
	}

	articles, err := c.news.Search(ctx, query, refillGeneral)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	log.Info().Str("query", query).Int("count", len(articles)).Msg("Fetched search results")
	return c.enqueue(ctx, filter.DedupeByID(articles))
}

func (c *Curator) enqueue(ctx context.Context, articles []models.ArticleRecord) (*RefillResult, error) {
	result := &RefillResult{Fetched: len(articles)}
	var items []models.QueueItem
	for _, a := range articles {
		verdict := c.filter.ScoreArticle(a)
		if !verdict.IsRecommended {
			continue
		}
		items = append(items, c.queueItem(a, verdict))
	}
	result.Recommended = len(items)

	if len(items) > 0 {
		added, skipped, err := c.store.AddToQueue(ctx, items)
		if err != nil {
			return nil, fmt.Errorf("add to queue: %w", err)
		}
		result.Added, result.Skipped = added, skipped
	}

	log.Info().
		Int("fetched", result.Fetched).
		Int("recommended", result.Recommended).
		Int("added", result.Added).
		Int("skipped", result.Skipped).
		Msg("Queue refilled")
	return result, nil
}

func (c *Curator) queueItem(a models.ArticleRecord, verdict filter.Verdict) models.QueueItem {
	id := a.ID
	if id == "" {
		id = a.DerivedID()
	}
	category := a.Category
	if category == "" {
		category = c.SuggestCategory(a)
	}
	return models.QueueItem{
		ExternalID:        id,
		Title:             a.Title,
		Description:       a.Description,
		Content:           a.Content,
		Source:            a.Source,
		Author:            a.Author,
		URL:               a.URL,
		ImageURL:          a.ImageURL,
		SuggestedCategory: category,
		AIScore:           verdict.Score,
		AIReasons:         verdict.Reasons,
		PublishedAt:       a.PublishedAt,
	}
}

// SuggestCategory returns the matching category with the highest score, or
// "" when none matches.
func (c *Curator) SuggestCategory(a models.ArticleRecord) string {
	best, bestScore := "", 0
	for _, cat := range c.filter.Categories() {
		v := c.filter.ScoreCategoryArticle(a, cat.ID)
		if v.CategoryMatch && v.Score > bestScore {
			best, bestScore = cat.ID, v.Score
		}
	}
	return best
}

// ScoreDetail is every verdict the filter computes for one article.
type ScoreDetail struct {
	Suitability       filter.Verdict                    `json:"suitability"`
	Reason            string                            `json:"reason"`
	Categories        map[string]filter.CategoryVerdict `json:"categories"`
	SuggestedCategory string                            `json:"suggested_category,omitempty"`
}

// ScoreDetail scores an article for suitability and against every category.
func (c *Curator) ScoreDetail(a models.ArticleRecord) ScoreDetail {
	verdict := c.filter.ScoreArticle(a)
	detail := ScoreDetail{
		Suitability:       verdict,
		Reason:            c.filter.SuitabilityReason(verdict),
		Categories:        make(map[string]filter.CategoryVerdict),
		SuggestedCategory: c.SuggestCategory(a),
	}
	for _, cat := range c.filter.Categories() {
		detail.Categories[cat.ID] = c.filter.ScoreCategoryArticle(a, cat.ID)
	}
	return detail
}

// ============================================================================
// INTERPRETATION
// ============================================================================

// Reflection is an interpretation together with the verse chosen for the news.
type Reflection struct {
	*models.Interpretation
	QuranVerse models.Verse `json:"quran_verse"`
	FromCache  bool         `json:"from_cache"`
}

// Interpret returns the cached reflection for the news or generates one.
// Without a working model the fallback text is served and not cached.
func (c *Curator) Interpret(ctx context.Context, news models.NewsInput) (*Reflection, error) {
	if news.Title == "" {
		return nil, ErrMissingTitle
	}

	body := news.Content
	if body == "" {
		body = news.Description
	}
	verse := interpret.RelevantVerse(news.Title, body)
	key := news.CacheKey()

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			return &Reflection{Interpretation: cached, QuranVerse: verse, FromCache: true}, nil
		}
	}

	interp := c.generate(ctx, news)
	if !interp.UsedFallback && c.cache != nil {
		if err := c.cache.Set(ctx, interp); err != nil {
			log.Warn().Err(err).Str("news_id", key).Msg("Failed to cache interpretation")
		}
	}
	return &Reflection{Interpretation: interp, QuranVerse: verse}, nil
}

func (c *Curator) generate(ctx context.Context, news models.NewsInput) *models.Interpretation {
	if c.llm == nil || !c.llm.Configured() {
		log.Warn().Msg("Interpretation model not configured, using fallback")
		return interpret.Fallback(news)
	}

	start := time.Now()
	interp, err := c.llm.Generate(ctx, news)
	if err != nil {
		log.Warn().Err(err).Str("title", news.Title).Msg("Interpretation failed, using fallback")
		return interpret.Fallback(news)
	}
	log.Debug().
		Str("news_id", interp.NewsID).
		Dur("took", time.Since(start)).
		Msg("Interpretation generated")
	return interp
}

// WarmInterpretations generates reflections for the most recent approved
// articles that have none cached. It returns how many were generated.
func (c *Curator) WarmInterpretations(ctx context.Context, limit int) (int, error) {
	if c.store == nil || c.cache == nil || c.llm == nil || !c.llm.Configured() {
		return 0, nil
	}

	articles, err := c.store.GetApprovedArticles(ctx, limit, "")
	if err != nil {
		return 0, fmt.Errorf("load approved articles: %w", err)
	}

	generated := 0
	for i := range articles {
		if err := ctx.Err(); err != nil {
			return generated, err
		}
		rec := articles[i].Record()
		news := models.NewsInput{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Content:     rec.Content,
			Source:      rec.Source,
		}
		if _, ok := c.cache.Get(ctx, news.CacheKey()); ok {
			continue
		}

		r, err := c.Interpret(ctx, news)
		if err != nil {
			log.Warn().Err(err).Str("news_id", news.ID).Msg("Warm-up skipped article")
			continue
		}
		if !r.UsedFallback {
			generated++
		}
	}

	log.Info().Int("generated", generated).Int("articles", len(articles)).Msg("Interpretations warmed")
	return generated, nil
}
