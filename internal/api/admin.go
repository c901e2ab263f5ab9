package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/auth"
	"github.com/infoai1/spiritual-reflections/internal/content"
	"github.com/infoai1/spiritual-reflections/internal/extract"
	"github.com/infoai1/spiritual-reflections/internal/models"
	"github.com/infoai1/spiritual-reflections/internal/scheduler"
	"github.com/infoai1/spiritual-reflections/internal/storage"
)

// ============================================================================
// SESSION HANDLERS
// ============================================================================

// AdminLogin checks the admin password and sets the session cookie.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			respondError(w, http.StatusUnauthorized, "Invalid password")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.auth.SetSessionCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AdminLogout clears the session cookie.
func (h *Handlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AdminVerify reports whether the request carries a valid session.
func (h *Handlers) AdminVerify(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"authenticated": h.auth.Authenticated(r)})
}

// ============================================================================
// QUEUE HANDLERS
// ============================================================================

// GetQueue returns the pending review queue.
func (h *Handlers) GetQueue(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	items, err := h.store.GetPendingQueue(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch queue")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"queue": items,
		"count": len(items),
	})
}

// RefillQueue fetches fresh news into the review queue. With ?q= the
// results of that news search are queued instead.
func (h *Handlers) RefillQueue(w http.ResponseWriter, r *http.Request) {
	var (
		result *content.RefillResult
		err    error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		result, err = h.curator.RefillQueueFromSearch(r.Context(), q)
	} else {
		result, err = h.curator.RefillQueue(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("Queue refill failed")
		respondError(w, http.StatusInternalServerError, "Failed to refill queue")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ReviewQueueItem approves or rejects a queued article.
func (h *Handlers) ReviewQueueItem(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	var req struct {
		Action   string `json:"action"`
		Category string `json:"category"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Category != "" && !h.knownCategory(req.Category) {
		respondError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	id := chi.URLParam(r, "id")
	switch req.Action {
	case "approve":
		article, err := h.store.ApproveQueueItem(r.Context(), id, req.Category)
		if err != nil {
			respondStoreError(w, err, "Failed to approve article")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "article": article})

	case "reject":
		if err := h.store.RejectQueueItem(r.Context(), id); err != nil {
			respondStoreError(w, err, "Failed to reject article")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		respondError(w, http.StatusBadRequest, "Action must be approve or reject")
	}
}

// ============================================================================
// ARTICLE HANDLERS
// ============================================================================

// ListArticles returns one page of stored articles.
func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	q := r.URL.Query()
	f := storage.ArticleFilter{
		Page:     getPage(r),
		Limit:    getLimit(r, 20),
		Status:   models.ArticleStatus(q.Get("status")),
		Category: q.Get("category"),
	}
	if f.Status != "" && !f.Status.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	articles, total, err := h.store.ListArticles(r.Context(), f)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch articles")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"count":    len(articles),
		"total":    total,
		"page":     f.Page,
		"limit":    f.Limit,
	})
}

type articleRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	Author      string    `json:"author"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"published_at"`
}

func (a articleRequest) record() models.ArticleRecord {
	return models.ArticleRecord{
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Source:      a.Source,
		Author:      a.Author,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt,
		Category:    a.Category,
	}
}

// CreateArticle publishes a manually entered article.
func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	var req articleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Category != "" && !h.knownCategory(req.Category) {
		respondError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	verdict := h.curator.Filter().ScoreArticle(req.record())
	article := &models.Article{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Source:      req.Source,
		Author:      req.Author,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		AIScore:     verdict.Score,
		AIReasons:   verdict.Reasons,
		PublishedAt: req.PublishedAt,
	}
	if err := h.store.CreateArticle(r.Context(), article); err != nil {
		log.Error().Err(err).Msg("Create article failed")
		respondError(w, http.StatusInternalServerError, "Failed to create article")
		return
	}

	respondJSON(w, http.StatusCreated, article)
}

// UpdateArticle changes the status of an article.
func (h *Handlers) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	var req struct {
		Status models.ArticleStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "Status must be approved or hidden")
		return
	}

	if err := h.store.UpdateArticleStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		respondStoreError(w, err, "Failed to update article")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteArticle removes an article.
func (h *Handlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	if err := h.store.DeleteArticle(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err, "Failed to delete article")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// FetchURL extracts metadata from a page for manual entry and scores it.
func (h *Handlers) FetchURL(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		respondError(w, http.StatusServiceUnavailable, "Extractor not available")
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	meta, err := h.extractor.Extract(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrInvalidURL), errors.Is(err, extract.ErrNotHTML):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Warn().Err(err).Str("url", req.URL).Msg("Fetch URL failed")
			respondError(w, http.StatusBadGateway, "Failed to fetch URL")
		}
		return
	}

	rec := models.ArticleRecord{
		Title:       meta.Title,
		Description: meta.Description,
		Content:     meta.Content,
		Source:      meta.Source,
		Author:      meta.Author,
		URL:         meta.URL,
		ImageURL:    meta.ImageURL,
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"metadata": meta,
		"score":    h.curator.ScoreDetail(rec),
	})
}

// ScoreArticle returns every verdict for a submitted article.
func (h *Handlers) ScoreArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title+req.Description+req.Content) == "" {
		respondError(w, http.StatusBadRequest, "Title, description or content is required")
		return
	}

	respondJSON(w, http.StatusOK, h.curator.ScoreDetail(req.record()))
}

// ============================================================================
// STATS & CACHE HANDLERS
// ============================================================================

// GetStats returns queue, article and cache statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}

	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	resp := map[string]any{"storage": stats}
	if h.cache != nil {
		resp["cache"] = h.cache.Stats(r.Context())
	}
	respondJSON(w, http.StatusOK, resp)
}

// ClearCache removes every cached interpretation.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, http.StatusServiceUnavailable, "Cache not available")
		return
	}

	n, err := h.cache.Clear(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
}

// DeleteCacheEntry removes one cached interpretation.
func (h *Handlers) DeleteCacheEntry(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, http.StatusServiceUnavailable, "Cache not available")
		return
	}

	if err := h.cache.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete cache entry")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ============================================================================
// JOB HANDLERS
// ============================================================================

// GetJobs returns the status of all scheduled jobs.
func (h *Handlers) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not available")
		return
	}

	jobs := h.scheduler.GetJobStatus()
	respondJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// RunJob runs a specific job by name.
func (h *Handlers) RunJob(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not available")
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.scheduler.RunJobNow(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "Job not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to run job")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Job triggered: " + name,
	})
}

func (h *Handlers) knownCategory(id string) bool {
	_, ok := h.curator.Filter().Category(id)
	return ok
}

func respondStoreError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	log.Error().Err(err).Msg(message)
	respondError(w, http.StatusInternalServerError, message)
}
