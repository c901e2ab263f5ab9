// Package extract pulls article metadata and readable text out of a web page,
// for articles an admin adds by URL.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const userAgent = "Mozilla/5.0 (compatible; SpiritualReflections/1.0)"

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrFetchFailed is returned when the page answers with a non-2xx status.
	ErrFetchFailed = errors.New("failed to fetch URL")

	// ErrNotHTML is returned when the page is not an HTML document.
	ErrNotHTML = errors.New("URL does not return HTML content")
)

// Metadata is what could be read from a page. Missing values are empty.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Source      string `json:"source"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	Content     string `json:"content"`
}

// Extractor fetches pages and reads their metadata.
type Extractor struct {
	http *resty.Client
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		http: resty.New().
			SetTimeout(20 * time.Second).
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "text/html,application/xhtml+xml").
			SetHeader("Accept-Language", "en-US,en;q=0.9"),
	}
}

// Extract fetches rawURL and reads its Open Graph, Twitter and standard meta
// tags. The readable body text, when found, is returned as Content.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Metadata, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return nil, ErrInvalidURL
	}

	resp, err := e.http.R().
		SetContext(ctx).
		Get(pageURL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrFetchFailed, resp.StatusCode())
	}
	if !strings.Contains(resp.Header().Get("Content-Type"), "text/html") {
		return nil, ErrNotHTML
	}

	finalURL := pageURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL
	}

	meta, err := parse(resp.Body(), finalURL)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("url", meta.URL).
		Str("title", meta.Title).
		Int("content_length", len(meta.Content)).
		Msg("Extracted page metadata")

	return meta, nil
}

// parse reads metadata from an HTML document located at pageURL.
func parse(body []byte, pageURL *url.URL) (*Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := &Metadata{
		Title: firstNonEmpty(
			property(doc, "og:title"),
			property(doc, "twitter:title"),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			property(doc, "og:description"),
			property(doc, "twitter:description"),
			name(doc, "description"),
		),
		ImageURL: absolute(pageURL, firstNonEmpty(
			property(doc, "og:image"),
			property(doc, "twitter:image"),
		)),
		Source: firstNonEmpty(
			property(doc, "og:site_name"),
			name(doc, "application-name"),
			domainName(pageURL),
		),
		Author: firstNonEmpty(
			name(doc, "author"),
			property(doc, "article:author"),
		),
		URL: pageURL.String(),
	}

	if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		meta.Content = strings.TrimSpace(article.TextContent)
		if meta.Description == "" {
			meta.Description = strings.TrimSpace(article.Excerpt)
		}
		if meta.Author == "" {
			meta.Author = strings.TrimSpace(article.Byline)
		}
	} else {
		log.Debug().Err(err).Str("url", pageURL.String()).Msg("No readable content")
	}

	return meta, nil
}

func property(doc *goquery.Document, p string) string {
	return doc.Find(fmt.Sprintf(`meta[property=%q]`, p)).First().AttrOr("content", "")
}

func name(doc *goquery.Document, n string) string {
	return doc.Find(fmt.Sprintf(`meta[name=%q]`, n)).First().AttrOr("content", "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// absolute resolves a possibly relative image reference against the page.
func absolute(base *url.URL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http") {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// domainName turns www.example.co into "Example".
func domainName(u *url.URL) string {
	host := strings.TrimPrefix(u.Hostname(), "www.")
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	d := parts[len(parts)-2]
	if d == "" {
		return host
	}
	return strings.ToUpper(d[:1]) + d[1:]
}
