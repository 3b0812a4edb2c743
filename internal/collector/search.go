package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/jmyang-dev/ainews-harvester/internal/domain"
	"github.com/jmyang-dev/ainews-harvester/internal/logger"
	"github.com/jmyang-dev/ainews-harvester/pkg/httpclient"
)

const (
	// aggregatorHost is the feed provider's own domain; links under it are
	// redirect wrappers around the origin article URL.
	aggregatorHost = "news.google.com"

	maxSummaryRunes = 300
)

// FeedSearchClient queries the news search feed and parses the returned
// entries into candidate articles.
type FeedSearchClient struct {
	client   httpclient.Client
	parser   *gofeed.Parser
	log      logger.Logger
	language string
	region   string
	now      func() time.Time
}

// NewFeedSearchClient builds a search client for the given locale.
func NewFeedSearchClient(client httpclient.Client, log logger.Logger, language, region string) *FeedSearchClient {
	if client == nil {
		client = httpclient.NewRestyClient(30 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if language == "" {
		language = "ko"
	}
	if region == "" {
		region = "KR"
	}
	return &FeedSearchClient{
		client:   client,
		parser:   gofeed.NewParser(),
		log:      log,
		language: language,
		region:   region,
		now:      time.Now,
	}
}

// Search issues the feed query and returns up to limit candidate articles.
// A feed with zero entries yields an empty slice, not an error; malformed
// entries are skipped individually.
func (s *FeedSearchClient) Search(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	feedURL := s.buildFeedURL(query)

	s.log.InfoObj("searching news feed", "feed_search", map[string]any{
		"url": feedURL,
	})

	resp, err := s.client.Get(ctx, feedURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: feedURL, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &NetworkError{URL: feedURL, Err: fmt.Errorf("status %d", resp.StatusCode())}
	}

	feed, err := s.parser.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &NetworkError{URL: feedURL, Err: fmt.Errorf("parse feed: %w", err)}
	}
	if len(feed.Items) == 0 {
		return nil, nil
	}

	articles := make([]domain.Article, 0, min(len(feed.Items), limit))
	for _, item := range feed.Items {
		if len(articles) == limit {
			break
		}
		art, err := s.entryToArticle(item)
		if err != nil {
			s.log.WarnObj("skipping malformed feed entry", "feed_entry_skip", map[string]any{
				"error": err.Error(),
			})
			continue
		}
		articles = append(articles, art)
	}
	return articles, nil
}

// buildFeedURL assembles the search URL with the encoded query and locale
// parameters.
func (s *FeedSearchClient) buildFeedURL(query string) string {
	return fmt.Sprintf("https://%s/rss/search?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		aggregatorHost,
		url.QueryEscape(query),
		s.language, s.region, s.region, s.language,
	)
}

// entryToArticle converts a parsed feed item into a candidate article.
func (s *FeedSearchClient) entryToArticle(item *gofeed.Item) (domain.Article, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return domain.Article{}, fmt.Errorf("entry has no title")
	}
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return domain.Article{}, fmt.Errorf("entry %q has no link", title)
	}

	return domain.Article{
		Title:       title,
		URL:         link,
		Source:      sourceLabel(title),
		Summary:     truncateRunes(strings.TrimSpace(item.Description), maxSummaryRunes),
		PublishedAt: s.publishedTime(item),
	}, nil
}

// publishedTime returns the entry's publish time, falling back to the current
// time when the feed carries no parseable date. The substitution is a known
// precision loss, logged but not treated as a failure.
func (s *FeedSearchClient) publishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if raw := strings.TrimSpace(item.Published); raw != "" {
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t
		}
	}
	s.log.WarnObj("entry has no parseable publish date, using current time", "feed_entry_no_date", map[string]any{
		"title": item.Title,
	})
	return s.now()
}

// sourceLabel extracts the publisher label the aggregator appends to entry
// titles ("Headline - Publisher"). Returns "Unknown" when absent.
func sourceLabel(title string) string {
	if idx := strings.LastIndex(title, " - "); idx >= 0 {
		if label := strings.TrimSpace(title[idx+len(" - "):]); label != "" {
			return label
		}
	}
	return "Unknown"
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
