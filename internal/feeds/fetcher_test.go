package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Good News Network</title>
    <link>https://example.org</link>
    <item>
      <title>Coral reef recovers</title>
      <link>https://example.org/coral</link>
      <description>A reef comes back to life.</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>   </title>
      <link>https://example.org/blank</link>
    </item>
    <item>
      <title>Volunteers plant a forest</title>
      <link>https://example.org/forest</link>
      <description>Thousands of trees.</description>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFeed(t *testing.T) {
	srv := feedServer(t)
	f := NewFetcher([]string{srv.URL + "/rss"})

	got, err := f.FetchFeed(context.Background(), srv.URL+"/rss", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Coral reef recovers", got[0].Title)
	assert.Equal(t, models.StableID("https://example.org/coral"), got[0].ID)
	assert.Equal(t, "Good News Network", got[0].Source)
	assert.Equal(t, "A reef comes back to life.", got[0].Content)
	assert.Equal(t, 2026, got[0].PublishedAt.Year())
	assert.True(t, got[1].PublishedAt.IsZero())
}

func TestFetchFeed_MaxCount(t *testing.T) {
	srv := feedServer(t)
	f := NewFetcher(nil)

	got, err := f.FetchFeed(context.Background(), srv.URL+"/rss", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetchAll_SkipsFailingFeeds(t *testing.T) {
	srv := feedServer(t)
	f := NewFetcher([]string{srv.URL + "/rss", " ", srv.URL + "/missing"})

	assert.Len(t, f.URLs(), 2)
	got := f.FetchAll(context.Background(), 10)
	assert.Len(t, got, 2)
}
