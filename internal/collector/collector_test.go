package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jmyang-dev/ainews-harvester/internal/keywords"
)

// recordingSource tracks usage updates.
type recordingSource struct {
	keywords []string
	err      error
	usage    map[string]int
}

func (s *recordingSource) SearchKeywords(context.Context, int) ([]string, error) {
	return s.keywords, s.err
}

func (s *recordingSource) UpdateUsage(_ context.Context, keyword string, n int) error {
	if s.usage == nil {
		s.usage = make(map[string]int)
	}
	s.usage[keyword] += n
	return nil
}

const collectFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>search results</title>
<item>
  <title>ChatGPT launches feature - TechDaily</title>
  <link>https://news.google.com/rss/articles/one</link>
  <pubDate>Mon, 31 Aug 2026 08:00:00 GMT</pubDate>
  <description>OpenAI shipped a new ChatGPT capability.</description>
</item>
<item>
  <title>Weather update - LocalNews</title>
  <link>https://news.google.com/rss/articles/two</link>
  <pubDate>Mon, 31 Aug 2026 10:00:00 GMT</pubDate>
  <description>Cloudy skies expected tomorrow.</description>
</item>
<item>
  <title>New AI chip unveiled - SiliconTimes</title>
  <link>https://news.google.com/rss/articles/three</link>
  <pubDate>Mon, 31 Aug 2026 09:00:00 GMT</pubDate>
  <description>A new accelerator for AI inference.</description>
</item>
</channel></rss>`

func articlePage(topic string) string {
	return fmt.Sprintf(`<html><body><article>%s %s</article></body></html>`,
		topic, strings.Repeat("기사 본문 내용입니다. ", 30))
}

func newTestCollector(t *testing.T, client *fakeClient, source keywords.Source, opts Options) *Collector {
	t.Helper()
	feed := newTestSearchClient(client)
	c := New(opts, feed, NewURLResolver(client, nil), NewContentExtractor(client, nil, 0), source, nil)
	c.sleep = func(context.Context, time.Duration) bool { return true }
	return c
}

func wireCollectRun(client *fakeClient, s *FeedSearchClient, query string) {
	client.on(http.MethodGet, s.buildFeedURL(query), &fakeResponse{body: []byte(collectFeed)})

	for link, origin := range map[string]string{
		"https://news.google.com/rss/articles/one":   "https://example.com/one",
		"https://news.google.com/rss/articles/two":   "https://example.com/two",
		"https://news.google.com/rss/articles/three": "https://example.com/three",
	} {
		client.on(http.MethodHead, link, &fakeResponse{finalURL: origin})
	}
	client.on(http.MethodGet, "https://example.com/one", &fakeResponse{body: []byte(articlePage("ChatGPT 업데이트."))})
	client.on(http.MethodGet, "https://example.com/two", &fakeResponse{body: []byte(articlePage("내일 비 소식."))})
	client.on(http.MethodGet, "https://example.com/three", &fakeResponse{body: []byte(articlePage("AI 반도체 공개."))})
}

func TestCollect(t *testing.T) {
	client := newFakeClient()
	source := &recordingSource{keywords: []string{"ChatGPT", "AI"}}
	c := newTestCollector(t, client, source, Options{MaxArticles: 10})

	query, _ := BuildQuery(source.keywords, 1)
	wireCollectRun(client, c.feed, query)

	articles, stats, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	// The weather entry has no keyword anywhere and is filtered out.
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	// Newest first.
	if !strings.HasPrefix(articles[0].Title, "New AI chip") {
		t.Errorf("articles not sorted newest first: %q", articles[0].Title)
	}
	if articles[0].URL != "https://example.com/three" {
		t.Errorf("aggregator link not resolved: %q", articles[0].URL)
	}

	if stats.Searched != 3 || stats.Crawled != 3 || stats.Filtered != 2 || stats.FailedCrawls != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.KeywordMatches["ChatGPT"] != 1 {
		t.Errorf("keyword matches = %v", stats.KeywordMatches)
	}
	if source.usage["ChatGPT"] != 1 {
		t.Errorf("usage not reported to source: %v", source.usage)
	}

	for _, art := range articles {
		if art.ContentLength != len([]rune(art.Content)) {
			t.Errorf("content length %d inconsistent with content (%d runes)", art.ContentLength, len([]rune(art.Content)))
		}
	}
}

func TestCollectCrawlFailureDegradesToSummary(t *testing.T) {
	client := newFakeClient()
	source := &recordingSource{keywords: []string{"ChatGPT", "AI"}}
	c := newTestCollector(t, client, source, Options{MaxArticles: 10})

	query, _ := BuildQuery(source.keywords, 1)
	wireCollectRun(client, c.feed, query)
	client.fail(http.MethodGet, "https://example.com/one", errors.New("connection reset"))

	articles, stats, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if stats.FailedCrawls != 1 || stats.Crawled != 2 {
		t.Errorf("stats = %+v, want 1 failed crawl", stats)
	}

	var degraded bool
	for _, art := range articles {
		if art.URL == "https://example.com/one" {
			degraded = true
			if art.Content != art.Summary {
				t.Errorf("failed crawl should fall back to summary, got %q", art.Content)
			}
		}
	}
	if !degraded {
		t.Error("article with failed crawl was dropped instead of degraded")
	}
}

func TestCollectCapsAtMaxArticles(t *testing.T) {
	client := newFakeClient()
	source := &recordingSource{keywords: []string{"ChatGPT", "AI"}}
	c := newTestCollector(t, client, source, Options{MaxArticles: 1})

	query, _ := BuildQuery(source.keywords, 1)
	wireCollectRun(client, c.feed, query)

	articles, _, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("got %d articles, want cap of 1", len(articles))
	}
}

func TestCollectKeywordSourceFailureUsesDefaults(t *testing.T) {
	client := newFakeClient()
	source := &recordingSource{err: errors.New("sheet unavailable")}
	c := newTestCollector(t, client, source, Options{MaxArticles: 10})

	query, _ := BuildQuery(keywords.DefaultKeywords, 1)
	wireCollectRun(client, c.feed, query)

	_, stats, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect should degrade to the default keyword list, got %v", err)
	}
	if stats.Searched != 3 {
		t.Errorf("stats.Searched = %d, want 3", stats.Searched)
	}
}

func TestCollectFeedFailureFailsRun(t *testing.T) {
	client := newFakeClient()
	source := &recordingSource{keywords: []string{"AI"}}
	c := newTestCollector(t, client, source, Options{MaxArticles: 10})

	query, _ := BuildQuery(source.keywords, 1)
	client.fail(http.MethodGet, c.feed.buildFeedURL(query), errors.New("dns failure"))

	_, _, err := c.Collect(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
}

func TestCollectStableSortOnEqualTimestamps(t *testing.T) {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
<item><title>First AI story - A</title><link>https://news.google.com/rss/articles/one</link><pubDate>Mon, 31 Aug 2026 09:00:00 GMT</pubDate><description>AI</description></item>
<item><title>Second AI story - B</title><link>https://news.google.com/rss/articles/two</link><pubDate>Mon, 31 Aug 2026 09:00:00 GMT</pubDate><description>AI</description></item>
</channel></rss>`

	client := newFakeClient()
	source := &recordingSource{keywords: []string{"AI"}}
	c := newTestCollector(t, client, source, Options{MaxArticles: 10})

	query, _ := BuildQuery(source.keywords, 1)
	client.on(http.MethodGet, c.feed.buildFeedURL(query), &fakeResponse{body: []byte(feed)})
	client.on(http.MethodHead, "https://news.google.com/rss/articles/one", &fakeResponse{finalURL: "https://example.com/one"})
	client.on(http.MethodHead, "https://news.google.com/rss/articles/two", &fakeResponse{finalURL: "https://example.com/two"})
	client.on(http.MethodGet, "https://example.com/one", &fakeResponse{body: []byte(articlePage("AI 이야기 하나."))})
	client.on(http.MethodGet, "https://example.com/two", &fakeResponse{body: []byte(articlePage("AI 이야기 둘."))})

	articles, _, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if !strings.HasPrefix(articles[0].Title, "First") {
		t.Errorf("equal timestamps should keep discovery order, got %q first", articles[0].Title)
	}
}
