package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/infoai1/spiritual-reflections/internal/auth"
	"github.com/infoai1/spiritual-reflections/internal/cache"
	"github.com/infoai1/spiritual-reflections/internal/content"
	"github.com/infoai1/spiritual-reflections/internal/extract"
	"github.com/infoai1/spiritual-reflections/internal/filter"
	"github.com/infoai1/spiritual-reflections/internal/models"
	"github.com/infoai1/spiritual-reflections/internal/newsapi"
	"github.com/infoai1/spiritual-reflections/internal/scheduler"
	"github.com/infoai1/spiritual-reflections/internal/storage"
)

const testPassword = "let-me-in"

type fakeStore struct {
	queue    []models.QueueItem
	articles []models.Article
	approved []string
	rejected []string
	created  *models.Article
	filter   storage.ArticleFilter
}

func (s *fakeStore) GetPendingQueue(context.Context) ([]models.QueueItem, error) {
	return s.queue, nil
}

func (s *fakeStore) ApproveQueueItem(_ context.Context, id, category string) (*models.Article, error) {
	for _, it := range s.queue {
		if it.ID.Hex() == id {
			if category == "" {
				category = it.SuggestedCategory
			}
			s.approved = append(s.approved, id)
			return &models.Article{ExternalID: it.ExternalID, Title: it.Title, Category: category, Status: models.ArticleStatusApproved}, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeStore) RejectQueueItem(_ context.Context, id string) error {
	for _, it := range s.queue {
		if it.ID.Hex() == id {
			s.rejected = append(s.rejected, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeStore) ListArticles(_ context.Context, f storage.ArticleFilter) ([]models.Article, int64, error) {
	s.filter = f
	return s.articles, int64(len(s.articles)), nil
}

func (s *fakeStore) CreateArticle(_ context.Context, a *models.Article) error {
	a.ID = primitive.NewObjectID()
	a.Status = models.ArticleStatusApproved
	s.created = a
	return nil
}

func (s *fakeStore) UpdateArticleStatus(_ context.Context, id string, _ models.ArticleStatus) error {
	if id != "known" {
		return storage.ErrNotFound
	}
	return nil
}

func (s *fakeStore) DeleteArticle(_ context.Context, id string) error {
	if id != "known" {
		return storage.ErrNotFound
	}
	return nil
}

func (s *fakeStore) GetStats(context.Context) (*storage.Stats, error) {
	return &storage.Stats{PendingQueue: int64(len(s.queue))}, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(_ context.Context, rawURL string) (*extract.Metadata, error) {
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, extract.ErrInvalidURL
	}
	return &extract.Metadata{Title: "Community garden blooms", URL: rawURL, Source: "example.com"}, nil
}

type fakeScheduler struct{ ran []string }

func (f *fakeScheduler) GetJobStatus() []scheduler.JobStatus {
	return []scheduler.JobStatus{{Name: "queue-refill", Schedule: "0 */6 * * *"}}
}

func (f *fakeScheduler) RunJobNow(name string) error {
	if name != "queue-refill" {
		return scheduler.ErrJobNotFound
	}
	f.ran = append(f.ran, name)
	return nil
}

type testEnv struct {
	handler http.Handler
	store   *fakeStore
	sched   *fakeScheduler
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCurator(t, content.NewCurator(filter.NewDefault(), content.Options{}))
}

func newTestEnvWithCurator(t *testing.T, curator *content.Curator) *testEnv {
	t.Helper()

	store := &fakeStore{queue: []models.QueueItem{
		{ID: primitive.NewObjectID(), ExternalID: "q1", Title: "Volunteers rebuild school", SuggestedCategory: "inspiration"},
	}}
	sched := &fakeScheduler{}
	manager := auth.NewManager(auth.Config{Password: testPassword, Secret: "test-secret"})

	srv := NewServer(Deps{
		Curator:   curator,
		Auth:      manager,
		Store:     store,
		Cache:     cache.New(cache.Config{}),
		Extractor: fakeExtractor{},
		Scheduler: sched,
	}, ":0")

	token, err := manager.Login(testPassword)
	require.NoError(t, err)

	return &testEnv{
		handler: srv.Handler(),
		store:   store,
		sched:   sched,
		cookie:  &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndCategories(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/api/categories", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 4, body["count"])
	first := body["categories"].([]any)[0].(map[string]any)
	assert.Equal(t, "inspiration", first["id"])
	concepts := first["quranic_concepts"].([]any)
	require.Len(t, concepts, 3)
	assert.Equal(t, "Tawakkul", concepts[0].(map[string]any)["name"])
}

func TestGetNews(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/news?limit=5", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, content.SourceFresh, body["source"])
	assert.LessOrEqual(t, len(body["articles"].([]any)), 5)

	rec = env.do(t, http.MethodGet, "/api/news?categorized=true", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["sections"].([]any), 4)
}

func TestInterpret(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/interpret", `{"description":"no title"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/interpret", `not json`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/interpret", `{"id":"n1","title":"NASA finds water on Mars"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["used_fallback"])
	assert.Equal(t, "21:33", body["quran_verse"].(map[string]any)["ref"])
}

func TestAdminSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/queue", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/login", `{"password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/login", `{}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/login", `{"password":"`+testPassword+`"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)

	rec = env.do(t, http.MethodGet, "/api/admin/verify", "", true)
	assert.Equal(t, true, decode(t, rec)["authenticated"])
	rec = env.do(t, http.MethodGet, "/api/admin/verify", "", false)
	assert.Equal(t, false, decode(t, rec)["authenticated"])
}

func TestQueue(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.queue[0].ID.Hex()

	rec := env.do(t, http.MethodGet, "/api/admin/queue", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = env.do(t, http.MethodPatch, "/api/admin/queue/"+id, `{"action":"publish"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/queue/"+id, `{"action":"approve","category":"sports"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/queue/"+primitive.NewObjectID().Hex(), `{"action":"approve"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/queue/"+id, `{"action":"approve","category":"nature"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	article := decode(t, rec)["article"].(map[string]any)
	assert.Equal(t, "nature", article["category"])

	rec = env.do(t, http.MethodPatch, "/api/admin/queue/"+id, `{"action":"reject"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{id}, env.store.rejected)
}

func TestArticles(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/articles?page=2&limit=5&status=hidden&category=health", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.ArticleFilter{Page: 2, Limit: 5, Status: models.ArticleStatusHidden, Category: "health"}, env.store.filter)

	rec = env.do(t, http.MethodGet, "/api/admin/articles?status=deleted", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/articles", `{"description":"no title"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/articles", `{"title":"Scientists discover breakthrough in ocean conservation","category":"nature"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, env.store.created)
	assert.Equal(t, 5, env.store.created.AIScore)
	assert.Equal(t, []string{"nature", "science", "environment"}, env.store.created.AIReasons)

	rec = env.do(t, http.MethodPatch, "/api/admin/articles/known", `{"status":"archived"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/articles/known", `{"status":"hidden"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/articles/missing", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFetchURLAndScore(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/fetch-url", `{"url":""}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/fetch-url", `{"url":"ftp://example.com"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/fetch-url", `{"url":"https://example.com/garden"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Community garden blooms", body["metadata"].(map[string]any)["title"])
	assert.Contains(t, body, "score")

	rec = env.do(t, http.MethodPost, "/api/admin/score", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/score", `{"title":"Terrorist attack kills dozens in bombing"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	suitability := decode(t, rec)["suitability"].(map[string]any)
	assert.EqualValues(t, -9, suitability["score"])
	assert.Equal(t, false, suitability["is_recommended"])
}

func TestStatsCacheAndJobs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["storage"].(map[string]any)["pending_queue"])
	assert.Contains(t, body, "cache")

	rec = env.do(t, http.MethodDelete, "/api/admin/cache/n1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/admin/cache", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/jobs", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = env.do(t, http.MethodPost, "/api/admin/jobs/unknown/run", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/jobs/queue-refill/run", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"queue-refill"}, env.sched.ran)
}

type queueSink struct{ items []models.QueueItem }

func (q *queueSink) GetApprovedArticles(context.Context, int, string) ([]models.Article, error) {
	return nil, nil
}

func (q *queueSink) AddToQueue(_ context.Context, items []models.QueueItem) (int, int, error) {
	q.items = append(q.items, items...)
	return len(items), 0, nil
}

func TestRefillQueue_FromSearch(t *testing.T) {
	sink := &queueSink{}
	env := newTestEnvWithCurator(t, content.NewCurator(filter.NewDefault(), content.Options{
		News:  newsapi.NewClient("", nil),
		Store: sink,
	}))

	rec := env.do(t, http.MethodPost, "/api/admin/queue?q=ocean", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/queue?q=ocean", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["fetched"])
	assert.Equal(t, float64(1), body["added"])
	require.Len(t, sink.items, 1)
	assert.Equal(t, "Ocean Conservation Efforts Show Positive Results", sink.items[0].Title)
}
