package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infoai1/spiritual-reflections/internal/filter"
	"github.com/infoai1/spiritual-reflections/internal/newsapi"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NEWS_API_SOURCES", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("SESSION_DURATION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, newsapi.DefaultSources, cfg.NewsAPISources)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, "0 */6 * * *", cfg.QueueRefillSchedule)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("RSS_FEEDS", " https://a.example/feed , ,https://b.example/rss")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("CACHE_MAX_ENTRIES", "250")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SESSION_DURATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example/feed", "https://b.example/rss"}, cfg.RSSFeeds)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 250, cfg.CacheMaxEntries)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
}

func TestFilterConfig(t *testing.T) {
	cfg := &Config{}
	fc, err := cfg.FilterConfig()
	require.NoError(t, err)
	assert.Equal(t, filter.DefaultConfig(), fc)
	assert.NoError(t, cfg.Validate())

	cfg.FilterConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "filter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("negative:\n  - name: harm\n    keywords: [bad]\n"), 0o600))
	cfg.FilterConfigPath = path
	fc, err = cfg.FilterConfig()
	require.NoError(t, err)
	require.Len(t, fc.Negative, 1)
	assert.Equal(t, "harm", fc.Negative[0].Name)
}
