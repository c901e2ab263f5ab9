// Package newsapi provides a client for the NewsAPI.org v2 endpoints.
// Without an API key every call is served from built-in sample news.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const (
	// BaseURL is the NewsAPI v2 endpoint.
	BaseURL = "https://newsapi.org/v2"

	defaultPageSize = 10
	unknownSource   = "Unknown"
)

// DefaultSources are the outlets headlines are taken from.
var DefaultSources = []string{
	"bbc-news",
	"reuters",
	"al-jazeera-english",
	"associated-press",
	"the-hindu",
}

// Client provides access to NewsAPI.
type Client struct {
	http    *resty.Client
	apiKey  string
	sources string
}

// NewClient creates a new NewsAPI client. An empty sources list uses
// DefaultSources.
func NewClient(apiKey string, sources []string) *Client {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Client{
		http: resty.New().
			SetBaseURL(BaseURL).
			SetTimeout(30 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(1 * time.Second),
		apiKey:  apiKey,
		sources: strings.Join(sources, ","),
	}
}

// SetBaseURL points the client at another host.
func (c *Client) SetBaseURL(u string) *Client {
	c.http.SetBaseURL(u)
	return c
}

// HasAPIKey reports whether live requests are made.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// response is the envelope of every NewsAPI reply.
type response struct {
	Status       string       `json:"status"`
	Code         string       `json:"code,omitempty"`
	Message      string       `json:"message,omitempty"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// TopHeadlines retrieves the latest headlines from the configured sources.
func (c *Client) TopHeadlines(ctx context.Context, pageSize int) ([]models.ArticleRecord, error) {
	if !c.HasAPIKey() {
		log.Warn().Msg("NEWS_API_KEY not set, using sample news")
		return SampleNews(), nil
	}

	params := url.Values{}
	params.Set("sources", c.sources)
	params.Set("pageSize", strconv.Itoa(pageSizeOrDefault(pageSize)))

	articles, err := c.get(ctx, "/top-headlines", params)
	if err != nil {
		return nil, err
	}
	return toRecords(articles, "article", ""), nil
}

// Search retrieves articles matching query, most relevant first.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]models.ArticleRecord, error) {
	if !c.HasAPIKey() {
		q := strings.ToLower(query)
		var out []models.ArticleRecord
		for _, a := range SampleNews() {
			if strings.Contains(strings.ToLower(a.Title), q) {
				out = append(out, a)
			}
		}
		return out, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(pageSizeOrDefault(pageSize)))
	params.Set("sortBy", "relevancy")

	articles, err := c.get(ctx, "/everything", params)
	if err != nil {
		return nil, err
	}
	return toRecords(articles, "search", ""), nil
}

// ByCategory retrieves articles for a category using its first search
// query. Twice pageSize results are requested and the first pageSize kept,
// each tagged with the category id.
func (c *Client) ByCategory(ctx context.Context, categoryID string, searchQueries []string, pageSize int) ([]models.ArticleRecord, error) {
	if !c.HasAPIKey() || len(searchQueries) == 0 {
		return SampleNewsByCategory(categoryID), nil
	}
	pageSize = pageSizeOrDefault(pageSize)

	params := url.Values{}
	params.Set("q", searchQueries[0])
	params.Set("pageSize", strconv.Itoa(pageSize*2))
	params.Set("sortBy", "relevancy")
	params.Set("language", "en")

	articles, err := c.get(ctx, "/everything", params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s news: %w", categoryID, err)
	}
	if len(articles) > pageSize {
		articles = articles[:pageSize]
	}
	return toRecords(articles, categoryID, categoryID), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]apiArticle, error) {
	log.Debug().
		Str("endpoint", path).
		Str("q", params.Get("q")).
		Str("page_size", params.Get("pageSize")).
		Msg("Fetching from NewsAPI")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey).
		SetQueryParamsFromValues(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("newsapi request failed: %w", err)
	}

	var body response
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("newsapi returned %d: %s", resp.StatusCode(), resp.String())
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", body.Code, body.Message)
	}

	log.Debug().
		Int("count", len(body.Articles)).
		Int("total", body.TotalResults).
		Msg("Fetched articles")

	return body.Articles, nil
}

// toRecords maps API articles to records. prefix seeds the id of articles
// that have neither URL nor title.
func toRecords(articles []apiArticle, prefix, category string) []models.ArticleRecord {
	out := make([]models.ArticleRecord, 0, len(articles))
	for i, a := range articles {
		key := a.URL
		if key == "" {
			key = a.Title
		}
		if key == "" {
			key = fmt.Sprintf("%s-%d", prefix, i)
		}

		content := a.Content
		if content == "" {
			content = a.Description
		}
		source := a.Source.Name
		if source == "" {
			source = unknownSource
		}

		rec := models.ArticleRecord{
			ID:          models.StableID(key),
			Title:       a.Title,
			Description: a.Description,
			Content:     content,
			Source:      source,
			Author:      a.Author,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Category:    category,
		}
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			rec.PublishedAt = t
		}
		out = append(out, rec)
	}
	return out
}

func pageSizeOrDefault(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	return n
}
