package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/auth"
	"github.com/infoai1/spiritual-reflections/internal/cache"
	"github.com/infoai1/spiritual-reflections/internal/content"
	"github.com/infoai1/spiritual-reflections/internal/extract"
	"github.com/infoai1/spiritual-reflections/internal/models"
	"github.com/infoai1/spiritual-reflections/internal/scheduler"
	"github.com/infoai1/spiritual-reflections/internal/storage"
)

const (
	defaultNewsLimit        = 10
	defaultCategorizedLimit = 12
	maxBodyBytes            = 1 << 20
)

// Store is the persistence the admin API works on.
type Store interface {
	GetPendingQueue(ctx context.Context) ([]models.QueueItem, error)
	ApproveQueueItem(ctx context.Context, id, category string) (*models.Article, error)
	RejectQueueItem(ctx context.Context, id string) error
	ListArticles(ctx context.Context, f storage.ArticleFilter) ([]models.Article, int64, error)
	CreateArticle(ctx context.Context, article *models.Article) error
	UpdateArticleStatus(ctx context.Context, id string, status models.ArticleStatus) error
	DeleteArticle(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*storage.Stats, error)
}

// Cache is the interpretation cache as seen by the admin API.
type Cache interface {
	Delete(ctx context.Context, newsID string) error
	Clear(ctx context.Context) (int64, error)
	Stats(ctx context.Context) cache.Stats
}

// Extractor reads article metadata from a URL.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*extract.Metadata, error)
}

// Scheduler exposes job status and manual runs.
type Scheduler interface {
	GetJobStatus() []scheduler.JobStatus
	RunJobNow(name string) error
}

// Handlers holds the API handlers. Only the curator and auth manager are
// required; endpoints whose collaborator is nil answer 503.
type Handlers struct {
	curator   *content.Curator
	auth      *auth.Manager
	store     Store
	cache     Cache
	extractor Extractor
	scheduler Scheduler
}

// Deps holds the collaborators of the handlers.
type Deps struct {
	Curator   *content.Curator
	Auth      *auth.Manager
	Store     Store
	Cache     Cache
	Extractor Extractor
	Scheduler Scheduler
}

// NewHandlers creates new API handlers.
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		curator:   d.Curator,
		auth:      d.Auth,
		store:     d.Store,
		cache:     d.Cache,
		extractor: d.Extractor,
		scheduler: d.Scheduler,
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func getLimit(r *http.Request, defaultLimit int) int {
	limit := defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return limit
}

func getPage(r *http.Request) int {
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 1
}

// ============================================================================
// PUBLIC HANDLERS
// ============================================================================

// HealthCheck returns service health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "spiritual-reflections",
	})
}

type categoryResponse struct {
	models.Category
	QuranicConcepts []models.QuranicConcept `json:"quranic_concepts"`
}

// GetCategories returns the configured categories with their Quranic concepts.
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats := h.curator.Filter().Categories()
	categories := make([]categoryResponse, len(cats))
	for i, c := range cats {
		categories[i] = categoryResponse{Category: c.Category, QuranicConcepts: []models.QuranicConcept{}}
		for _, name := range c.QuranicConcepts {
			if concept := models.GetQuranicConcept(name); concept != nil {
				categories[i].QuranicConcepts = append(categories[i].QuranicConcepts, *concept)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetNews returns the news feed, grouped by category when categorized=true.
func (h *Handlers) GetNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if categorized, _ := strconv.ParseBool(r.URL.Query().Get("categorized")); categorized {
		result, err := h.curator.CategorizedFeed(ctx, getLimit(r, defaultCategorizedLimit))
		if err != nil {
			log.Error().Err(err).Msg("Categorized feed failed")
			respondError(w, http.StatusInternalServerError, "Failed to fetch news")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"sections": result.Sections,
			"all":      result.All,
			"count":    result.Count(),
			"source":   result.Source,
		})
		return
	}

	result, err := h.curator.Feed(ctx, getLimit(r, defaultNewsLimit))
	if err != nil {
		log.Error().Err(err).Msg("News feed failed")
		respondError(w, http.StatusInternalServerError, "Failed to fetch news")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"articles": result.Articles,
		"count":    len(result.Articles),
		"source":   result.Source,
	})
}

// Interpret returns the reflection for one news article.
func (h *Handlers) Interpret(w http.ResponseWriter, r *http.Request) {
	var news models.NewsInput
	if !decodeJSON(w, r, &news) {
		return
	}
	news.Title = strings.TrimSpace(news.Title)

	reflection, err := h.curator.Interpret(r.Context(), news)
	if err != nil {
		if errors.Is(err, content.ErrMissingTitle) {
			respondError(w, http.StatusBadRequest, "News title is required")
			return
		}
		log.Error().Err(err).Msg("Interpretation failed")
		respondError(w, http.StatusInternalServerError, "Failed to generate interpretation")
		return
	}

	respondJSON(w, http.StatusOK, reflection)
}
