// Package collector implements the article discovery and extraction pipeline:
// feed search, redirect resolution, content extraction, normalization,
// relevance filtering and keyword attribution, aggregated into a sorted,
// capped run output with per-run statistics.
package collector

import (
	"context"
	"sort"
	"time"

	"github.com/jmyang-dev/ainews-harvester/internal/domain"
	"github.com/jmyang-dev/ainews-harvester/internal/keywords"
	"github.com/jmyang-dev/ainews-harvester/internal/logger"
)

// Options are the run-level tunables of the pipeline.
type Options struct {
	// MaxArticles caps the run output; candidate work stops once reached.
	MaxArticles int
	// RecencyDays is the feed search window.
	RecencyDays int
	// RequestDelay is the pause between successive candidates. Politeness,
	// not performance: candidates are processed one at a time.
	RequestDelay time.Duration
	// MinPriority is passed to the keyword source.
	MinPriority int
	// OverfetchMultiplier controls how many feed entries are requested
	// relative to MaxArticles, since many are filtered out later.
	OverfetchMultiplier int
}

func (o Options) withDefaults() Options {
	if o.MaxArticles <= 0 {
		o.MaxArticles = 10
	}
	if o.RecencyDays <= 0 {
		o.RecencyDays = defaultRecencyDays
	}
	if o.RequestDelay < 0 {
		o.RequestDelay = 0
	}
	if o.MinPriority <= 0 {
		o.MinPriority = 3
	}
	if o.OverfetchMultiplier <= 0 {
		o.OverfetchMultiplier = 2
	}
	return o
}

// Collector wires the pipeline stages together for one topic interest.
type Collector struct {
	opts      Options
	feed      *FeedSearchClient
	resolver  *URLResolver
	extractor *ContentExtractor
	source    keywords.Source
	log       logger.Logger
	sleep     func(ctx context.Context, d time.Duration) bool
}

// New builds a Collector. A nil keyword source selects the built-in static
// list; a nil logger discards output.
func New(opts Options, feed *FeedSearchClient, resolver *URLResolver, extractor *ContentExtractor, source keywords.Source, log logger.Logger) *Collector {
	if source == nil {
		source = keywords.NewStaticSource(nil)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Collector{
		opts:      opts.withDefaults(),
		feed:      feed,
		resolver:  resolver,
		extractor: extractor,
		source:    source,
		log:       log,
		sleep:     sleepCtx,
	}
}

// Collect runs one full pipeline invocation: query construction, feed search
// and per-candidate processing, returning the sorted article list and the
// run's statistics. Per-candidate failures degrade records and bump counters;
// only query construction and the feed search itself can fail the run.
func (c *Collector) Collect(ctx context.Context) ([]domain.Article, domain.RunStats, error) {
	stats := domain.NewRunStats()

	active, err := c.source.SearchKeywords(ctx, c.opts.MinPriority)
	if err != nil || len(active) == 0 {
		// Source not wrapped in WithFallback; degrade here all the same.
		if err != nil {
			c.log.WarnObj("keyword lookup failed, using default list", "keyword_fallback", map[string]any{
				"error": err.Error(),
			})
		}
		active = keywords.DefaultKeywords
	}

	query, err := BuildQuery(active, c.opts.RecencyDays)
	if err != nil {
		return nil, stats, err
	}

	candidates, err := c.feed.Search(ctx, query, c.opts.MaxArticles*c.opts.OverfetchMultiplier)
	if err != nil {
		return nil, stats, err
	}
	stats.Searched = len(candidates)
	if len(candidates) == 0 {
		c.log.WarnObj("feed search returned no entries", "feed_empty", nil)
		return nil, stats, nil
	}

	collected := make([]domain.Article, 0, c.opts.MaxArticles)
	for i := range candidates {
		if len(collected) == c.opts.MaxArticles {
			break
		}
		if i > 0 && !c.sleep(ctx, c.opts.RequestDelay) {
			break
		}

		art, ok := c.processCandidate(ctx, candidates[i], active, &stats)
		if ok {
			collected = append(collected, art)
			stats.Filtered++
		}
	}

	// Newest first; stable so equal timestamps keep discovery order.
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].PublishedAt.After(collected[j].PublishedAt)
	})

	c.log.InfoObj("collection run finished", "run_done", map[string]any{
		"searched":      stats.Searched,
		"crawled":       stats.Crawled,
		"filtered":      stats.Filtered,
		"failed_crawls": stats.FailedCrawls,
	})
	return collected, stats, nil
}

// processCandidate enriches one candidate and reports whether it is relevant.
// Extraction failure falls back to the feed summary so a crawl failure
// degrades the record rather than dropping it.
func (c *Collector) processCandidate(ctx context.Context, art domain.Article, active []string, stats *domain.RunStats) (domain.Article, bool) {
	art.URL = c.resolver.Resolve(ctx, art.URL)

	content := Clean(c.extractor.Extract(ctx, art.URL))
	if content != "" {
		art.SetContent(content)
		stats.Crawled++
	} else {
		art.SetContent(art.Summary)
		stats.FailedCrawls++
	}

	if !IsRelevant(art, active) {
		c.log.DebugObj("candidate not relevant, skipping", "candidate_skip", map[string]any{
			"title": art.Title,
		})
		return art, false
	}

	art.FoundKeywords = c.attribute(ctx, art, active, stats)
	return art, true
}

// attribute records matched keywords in the run statistics and reports usage
// back to the keyword source. Reporting failures are logged and swallowed.
func (c *Collector) attribute(ctx context.Context, art domain.Article, active []string, stats *domain.RunStats) []string {
	found := MatchKeywords(art, active)
	for _, kw := range found {
		stats.CountMatch(kw)
		if err := c.source.UpdateUsage(ctx, kw, 1); err != nil {
			c.log.WarnObj("keyword usage update failed", "keyword_usage_error", map[string]any{
				"keyword": kw,
				"error":   err.Error(),
			})
		}
	}
	return found
}

// sleepCtx pauses for d, returning false if the context was canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
