package interpret

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	srv := chatServer(t, `{"what_happened":"A reef recovered.","executive_summary":"Creation renews itself.","interpretation":"Reflect."}`, http.StatusOK)
	c := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "test-model"})

	got, err := c.Generate(context.Background(), models.NewsInput{ID: "n1", Title: "Reef recovers"})
	require.NoError(t, err)

	assert.Equal(t, "n1", got.NewsID)
	assert.Equal(t, "A reef recovered.", got.WhatHappened)
	assert.Equal(t, "Creation renews itself.", got.ExecutiveSummary)
	assert.Equal(t, "Reflect.", got.Interpretation)
	assert.False(t, got.UsedFallback)
	require.Len(t, got.RelevantPassages, 3)
	for _, p := range got.RelevantPassages {
		assert.LessOrEqual(t, len([]rune(p.Content)), maxPassageLength+3)
	}
}

func TestGenerate_Errors(t *testing.T) {
	ctx := context.Background()
	news := models.NewsInput{Title: "Reef recovers"}

	_, err := NewClient(Config{}).Generate(ctx, news)
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := chatServer(t, "", http.StatusInternalServerError)
	c := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "test-model"})
	_, err = c.Generate(ctx, news)
	assert.Error(t, err)

	srv = chatServer(t, `not json`, http.StatusOK)
	c = NewClient(Config{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "test-model"})
	_, err = c.Generate(ctx, news)
	assert.Error(t, err)

	srv = chatServer(t, `{"interpretation":"  "}`, http.StatusOK)
	c = NewClient(Config{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "test-model"})
	_, err = c.Generate(ctx, news)
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	got := Fallback(models.NewsInput{Title: "Reef recovers", Description: "Corals are back."})

	assert.True(t, got.UsedFallback)
	assert.Equal(t, "Reef recovers", got.NewsID)
	assert.Equal(t, "Corals are back.", got.WhatHappened)
	assert.Contains(t, got.Interpretation, `"Reef recovers"`)
	assert.NotNil(t, got.RelevantPassages)
}

func TestTheme(t *testing.T) {
	tests := []struct {
		title, content, want string
	}{
		{"NASA finds water on Mars", "", "space"},
		{"Rescue teams bring hope", "", "hope"},
		{"Quiet morning", "", "contemplation"},
		{"Doctors test vaccine", "in a hospital study", "health"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Theme(tt.title, tt.content), tt.title)
	}
}

func TestRelevantVerse(t *testing.T) {
	assert.Equal(t, "21:33", RelevantVerse("NASA finds water on Mars", "").Ref)
	assert.Equal(t, "39:53", RelevantVerse("Rescue teams bring hope", "").Ref)
	assert.Equal(t, "47:24", RelevantVerse("a", "").Ref)

	v := RelevantVerse("Same title", "first body")
	assert.Equal(t, v, RelevantVerse("Same title", "first body"))
}

func TestChat_CanceledContext(t *testing.T) {
	srv := chatServer(t, `{}`, http.StatusOK)
	c := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL + "/v1", Model: "test-model", RPM: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Chat(ctx, ChatRequest{UserPrompt: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
}
