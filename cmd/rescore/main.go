// Package main recomputes stored suitability scores after a keyword table change.
package main

import (
	"context"
	"flag"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/config"
	"github.com/infoai1/spiritual-reflections/internal/filter"
	"github.com/infoai1/spiritual-reflections/internal/storage"
)

const pageSize = 100

func main() {
	dryRun := flag.Bool("dry-run", false, "report changes without writing them")
	flag.Parse()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	filterConfig, err := cfg.FilterConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load filter configuration")
	}
	f := filter.New(filterConfig)

	log.Info().Bool("dry_run", *dryRun).Msg("Starting rescore")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, err := storage.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer store.Close(ctx)

	// Step 1: pending queue
	queue, err := store.GetPendingQueue(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load queue")
	}

	queueUpdated := 0
	for i := range queue {
		item := &queue[i]
		v := f.ScoreArticle(item.Record())
		if v.Score == item.AIScore && slices.Equal(v.Reasons, item.AIReasons) {
			continue
		}
		log.Info().
			Str("title", item.Title).
			Int("old", item.AIScore).
			Int("new", v.Score).
			Msg("Queue item rescored")
		queueUpdated++
		if *dryRun {
			continue
		}
		if err := store.UpdateQueueScore(ctx, item.ID, v.Score, v.Reasons); err != nil {
			log.Error().Err(err).Str("id", item.ID.Hex()).Msg("Failed to update queue item")
		}
	}

	// Step 2: articles, page by page
	articlesUpdated, articlesSeen := 0, 0
	for page := 1; ; page++ {
		articles, total, err := store.ListArticles(ctx, storage.ArticleFilter{Page: page, Limit: pageSize})
		if err != nil {
			log.Fatal().Err(err).Int("page", page).Msg("Failed to load articles")
		}

		for i := range articles {
			a := &articles[i]
			v := f.ScoreArticle(a.Record())
			if v.Score == a.AIScore && slices.Equal(v.Reasons, a.AIReasons) {
				continue
			}
			log.Info().
				Str("title", a.Title).
				Int("old", a.AIScore).
				Int("new", v.Score).
				Msg("Article rescored")
			articlesUpdated++
			if *dryRun {
				continue
			}
			if err := store.UpdateArticleScore(ctx, a.ID, v.Score, v.Reasons); err != nil {
				log.Error().Err(err).Str("id", a.ID.Hex()).Msg("Failed to update article")
			}
		}

		articlesSeen += len(articles)
		if len(articles) < pageSize || int64(articlesSeen) >= total {
			break
		}
	}

	log.Info().
		Int("queue_items", len(queue)).
		Int("queue_updated", queueUpdated).
		Int("articles", articlesSeen).
		Int("articles_updated", articlesUpdated).
		Bool("dry_run", *dryRun).
		Msg("Rescore complete")
}
