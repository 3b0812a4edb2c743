// Command agent runs one harvest: keyword lookup, feed search, extraction,
// filtering, storage and notification.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmyang-dev/ainews-harvester/internal/collector"
	"github.com/jmyang-dev/ainews-harvester/internal/config"
	"github.com/jmyang-dev/ainews-harvester/internal/domain"
	"github.com/jmyang-dev/ainews-harvester/internal/keywords"
	"github.com/jmyang-dev/ainews-harvester/internal/logger"
	"github.com/jmyang-dev/ainews-harvester/internal/notify"
	"github.com/jmyang-dev/ainews-harvester/internal/storage"
	"github.com/jmyang-dev/ainews-harvester/pkg/httpclient"
	"github.com/jmyang-dev/ainews-harvester/pkg/sinks"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "collect and print articles without storing or notifying")
	flag.Parse()

	if err := run(*dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "agent: %v\n", err)
		os.Exit(1)
	}
}

func run(dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if !dryRun {
		if err := cfg.ValidateSinks(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := buildKeywordSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	coll := collector.New(
		collector.Options{
			MaxArticles:         cfg.MaxArticles,
			RecencyDays:         cfg.RecencyDays,
			RequestDelay:        cfg.RequestDelay,
			MinPriority:         cfg.MinKeywordPriority,
			OverfetchMultiplier: cfg.OverfetchMultiplier,
		},
		collector.NewFeedSearchClient(httpclient.NewRestyClient(cfg.FeedTimeout), log, cfg.Language, cfg.Region),
		collector.NewURLResolver(httpclient.NewRestyClient(cfg.ResolveTimeout), log),
		collector.NewContentExtractor(httpclient.NewRestyClient(cfg.FetchTimeout), log, cfg.MinContentLength),
		source,
		log,
	)

	notifier := notify.NewNotifier(nil, log, cfg.TelegramBotToken, cfg.TelegramChatID)

	articles, stats, err := coll.Collect(ctx)
	if err != nil {
		if !dryRun {
			notifier.SendError(ctx, err.Error())
		}
		return fmt.Errorf("collect: %w", err)
	}

	if dryRun {
		printRun(articles, stats)
		return nil
	}

	var pageURL string
	if len(articles) > 0 {
		store := storage.NewNotionStore(nil, log, cfg.NotionAPIKey, cfg.NotionDatabaseID)
		pageURL, err = store.Save(ctx, articles)
		if err != nil {
			log.ErrorObj("storage save failed", "storage_error", map[string]any{
				"error": err.Error(),
			})
		}
	}

	notifier.SendSuccess(ctx, articles, pageURL)

	if cfg.SinksFile != "" {
		deliverDigest(ctx, cfg.SinksFile, articles, stats, log)
	}
	return nil
}

// buildKeywordSource chains the live Google Sheets source behind the bbolt
// cache, falling back to the built-in list when the sheet is unavailable. A
// missing spreadsheet id selects the built-in list directly.
func buildKeywordSource(ctx context.Context, cfg *config.Config, log logger.Logger) (keywords.Source, func(), error) {
	noop := func() {}

	if cfg.SheetsSpreadsheetID == "" {
		return keywords.NewStaticSource(nil), noop, nil
	}

	live, err := keywords.NewSheetsSource(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, log)
	if err != nil {
		log.WarnObj("sheets source unavailable, using built-in keywords", "keyword_source_fallback", map[string]any{
			"error": err.Error(),
		})
		return keywords.NewStaticSource(nil), noop, nil
	}

	cached, err := keywords.NewCachedSource(live, cfg.KeywordCachePath, cfg.KeywordCacheTTL, log)
	if err != nil {
		log.WarnObj("keyword cache unavailable, using live source", "keyword_cache_fallback", map[string]any{
			"error": err.Error(),
		})
		return keywords.WithFallback(live, keywords.NewStaticSource(nil), log), noop, nil
	}

	src := keywords.WithFallback(cached, keywords.NewStaticSource(nil), log)
	return src, func() { cached.Close() }, nil
}

// deliverDigest fans the run digest out to the configured sinks. Sink errors
// never fail the run.
func deliverDigest(ctx context.Context, path string, articles []domain.Article, stats domain.RunStats, log logger.Logger) {
	reg, err := sinks.LoadRegistry(path)
	if err != nil {
		log.ErrorObj("sink registry load failed", "sink_registry_error", map[string]any{
			"error": err.Error(),
		})
		return
	}

	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		log.ErrorObj("sink construction failed", "sink_build_error", map[string]any{
			"error": err.Error(),
		})
		return
	}

	delivered := sinks.DeliverAll(ctx, built, digestEvent(articles, stats), log)
	log.InfoObj("run digest delivered", "sink_digest_done", map[string]any{
		"sinks":     len(built),
		"delivered": delivered,
	})
}

func digestEvent(articles []domain.Article, stats domain.RunStats) sinks.Event {
	now := time.Now()
	evt := sinks.Event{
		RunID:       now.Format("20060102-150405"),
		GeneratedAt: now,
		Articles:    make([]sinks.EventArticle, 0, len(articles)),
		Stats: sinks.EventStats{
			Searched:     stats.Searched,
			Crawled:      stats.Crawled,
			Filtered:     stats.Filtered,
			FailedCrawls: stats.FailedCrawls,
			Keywords:     stats.KeywordMatches,
		},
	}
	for _, art := range articles {
		evt.Articles = append(evt.Articles, sinks.EventArticle{
			Title:         art.Title,
			URL:           art.URL,
			Source:        art.Source,
			PublishedAt:   art.PublishedAt,
			ContentLength: art.ContentLength,
			FoundKeywords: art.FoundKeywords,
		})
	}
	return evt
}

func printRun(articles []domain.Article, stats domain.RunStats) {
	fmt.Printf("searched=%d crawled=%d filtered=%d failed=%d\n",
		stats.Searched, stats.Crawled, stats.Filtered, stats.FailedCrawls)
	for i, art := range articles {
		fmt.Printf("%2d. [%s] %s\n    %s\n", i+1, art.Source, art.Title, art.URL)
		if len(art.FoundKeywords) > 0 {
			fmt.Printf("    keywords: %v\n", art.FoundKeywords)
		}
	}
}
