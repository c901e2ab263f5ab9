// Package interpret generates devotional reflections on news articles through
// an OpenAI-compatible chat completion endpoint.
package interpret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const (
	// DefaultEndpoint is the DashScope OpenAI-compatible endpoint.
	DefaultEndpoint = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "qwen-plus"

	// DefaultRPM caps requests per minute to the model endpoint.
	DefaultRPM = 30

	maxPassageLength = 200
)

// ErrNotConfigured is returned by Generate when no API key is set.
var ErrNotConfigured = errors.New("interpretation model not configured")

// Client wraps the OpenAI SDK.
type Client struct {
	client  *openai.Client
	model   string
	apiKey  string
	limiter *rate.Limiter
}

// Config holds the configuration for the client.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	RPM      int
}

// NewClient creates a new interpretation client.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RPM <= 0 {
		cfg.RPM = DefaultRPM
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.Endpoint

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), 1),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
	JSONMode     bool
}

// Chat sends a chat completion request and returns the first choice.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	log.Debug().
		Str("model", c.model).
		Int("messages", len(messages)).
		Bool("json_mode", req.JSONMode).
		Msg("Sending chat request")

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	log.Debug().
		Int("total_tokens", resp.Usage.TotalTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("Chat request complete")

	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends a chat request and parses the response as JSON.
func (c *Client) ChatJSON(ctx context.Context, req ChatRequest, result any) error {
	req.JSONMode = true

	content, err := c.Chat(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// generated is the JSON shape the model is asked to return.
type generated struct {
	WhatHappened     string `json:"what_happened"`
	ExecutiveSummary string `json:"executive_summary"`
	Interpretation   string `json:"interpretation"`
}

// Generate writes a reflection on news, drawing on the reference passages.
func (c *Client) Generate(ctx context.Context, news models.NewsInput) (*models.Interpretation, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	passages := ReferencePassages()

	var out generated
	err := c.ChatJSON(ctx, ChatRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt(news, passages),
		Temperature:  0.7,
		MaxTokens:    1024,
	}, &out)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Interpretation) == "" {
		return nil, fmt.Errorf("empty interpretation in response")
	}

	return &models.Interpretation{
		NewsID:           news.CacheKey(),
		WhatHappened:     out.WhatHappened,
		ExecutiveSummary: out.ExecutiveSummary,
		Interpretation:   out.Interpretation,
		RelevantPassages: truncatePassages(passages),
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// Fallback is the reflection served when the model is unavailable.
func Fallback(news models.NewsInput) *models.Interpretation {
	summary := news.Description
	if summary == "" {
		summary = news.Title
	}
	return &models.Interpretation{
		NewsID:           news.CacheKey(),
		WhatHappened:     summary,
		Interpretation:   fmt.Sprintf(fallbackTemplate, news.Title),
		RelevantPassages: []models.Passage{},
		UsedFallback:     true,
		CreatedAt:        time.Now().UTC(),
	}
}

func userPrompt(news models.NewsInput, passages []models.Passage) string {
	var refs strings.Builder
	for i, p := range passages {
		if i > 0 {
			refs.WriteString("\n\n")
		}
		fmt.Fprintf(&refs, "%q\n- %s", p.Content, p.Source)
	}

	source := news.Source
	if source == "" {
		source = "Unknown"
	}

	return fmt.Sprintf(`## Reference Passages

%s

---

## News to Interpret

Headline: %s

Content: %s %s

Source: %s

---

Write a spiritual interpretation of this news. Draw from the reference passages where relevant.

Respond with JSON:
{
  "what_happened": "two plain sentences on the facts of the story",
  "executive_summary": "one sentence with the spiritual lesson",
  "interpretation": "two or three paragraphs of flowing prose"
}`, refs.String(), news.Title, news.Description, news.Content, source)
}

func truncatePassages(passages []models.Passage) []models.Passage {
	out := make([]models.Passage, len(passages))
	for i, p := range passages {
		content := p.Content
		if r := []rune(content); len(r) > maxPassageLength {
			content = string(r[:maxPassageLength]) + "..."
		}
		out[i] = models.Passage{Content: content, Source: p.Source}
	}
	return out
}

const systemPrompt = `You are a spiritual guide who interprets the news in the tradition of contemplation (Tafakkur): turning worldly observations into spiritual wisdom.

Method:
1. See signs (Ayat): every event in the world is a sign from God.
2. Evoke gratitude (Shukr): connect the news to blessings we overlook.
3. Remember the Hereafter (Akhirat): gently remind readers this world is temporary.
4. Encourage reflection (Tadabbur): invite readers to ponder, not just read.
5. Find universal wisdom that applies to all of humanity, emphasising peace.

Style: gentle, wise and contemplative, never preachy. Simple language. Reference nature and creation as teachers. End with an uplifting thought.

Respond ONLY with valid JSON.`

const fallbackTemplate = `This news invites us to pause and reflect on the deeper meaning behind worldly events. Every happening in this universe is a sign (Ayah) from the Creator, waiting to be understood by those who contemplate.

The development reported in "%s" reminds us of both the blessings we enjoy and the greater purpose of our existence. The universe is like a vast book, and those who contemplate it discover the glory of its Author.

Let this news be an occasion for gratitude (Shukr) and deeper awareness. May it turn our hearts toward the eternal truths and remind us that while we engage with the affairs of this temporary world, our ultimate destination is the Hereafter (Akhirat).`
