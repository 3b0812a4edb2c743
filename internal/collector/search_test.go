package collector

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>search results</title>
<item>
  <title>ChatGPT launches feature - TechDaily</title>
  <link>https://news.google.com/rss/articles/abc</link>
  <pubDate>Mon, 31 Aug 2026 09:00:00 GMT</pubDate>
  <description>OpenAI shipped a new ChatGPT capability.</description>
</item>
<item>
  <title></title>
  <link>https://news.google.com/rss/articles/broken</link>
</item>
<item>
  <title>New AI chip unveiled - SiliconTimes</title>
  <link>https://news.google.com/rss/articles/def</link>
  <pubDate>Mon, 31 Aug 2026 08:00:00 GMT</pubDate>
  <description>A new accelerator for LLM inference.</description>
</item>
</channel></rss>`

func newTestSearchClient(client *fakeClient) *FeedSearchClient {
	s := NewFeedSearchClient(client, nil, "ko", "KR")
	s.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSearch(t *testing.T) {
	client := newFakeClient()
	s := newTestSearchClient(client)
	feedURL := s.buildFeedURL("AI when:1d")
	client.on(http.MethodGet, feedURL, &fakeResponse{body: []byte(testFeed)})

	articles, err := s.Search(context.Background(), "AI when:1d", 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2 (malformed entry skipped)", len(articles))
	}
	if articles[0].Title != "ChatGPT launches feature - TechDaily" {
		t.Errorf("title = %q", articles[0].Title)
	}
	if articles[0].Source != "TechDaily" {
		t.Errorf("source = %q, want TechDaily", articles[0].Source)
	}
	if articles[1].Source != "SiliconTimes" {
		t.Errorf("source = %q, want SiliconTimes", articles[1].Source)
	}
	if articles[0].PublishedAt.IsZero() {
		t.Error("published time not parsed")
	}
}

func TestSearchLimit(t *testing.T) {
	client := newFakeClient()
	s := newTestSearchClient(client)
	feedURL := s.buildFeedURL("AI when:1d")
	client.on(http.MethodGet, feedURL, &fakeResponse{body: []byte(testFeed)})

	articles, err := s.Search(context.Background(), "AI when:1d", 1)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("got %d articles, want 1", len(articles))
	}
}

func TestSearchEmptyFeed(t *testing.T) {
	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>empty</title></channel></rss>`
	client := newFakeClient()
	s := newTestSearchClient(client)
	feedURL := s.buildFeedURL("nohits when:1d")
	client.on(http.MethodGet, feedURL, &fakeResponse{body: []byte(empty)})

	articles, err := s.Search(context.Background(), "nohits when:1d", 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("got %d articles, want 0", len(articles))
	}
}

func TestSearchNetworkError(t *testing.T) {
	client := newFakeClient()
	s := newTestSearchClient(client)
	feedURL := s.buildFeedURL("AI when:1d")
	client.fail(http.MethodGet, feedURL, errors.New("connection refused"))

	_, err := s.Search(context.Background(), "AI when:1d", 10)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
}

func TestSearchBadStatus(t *testing.T) {
	client := newFakeClient()
	s := newTestSearchClient(client)
	feedURL := s.buildFeedURL("AI when:1d")
	client.on(http.MethodGet, feedURL, &fakeResponse{status: http.StatusServiceUnavailable})

	_, err := s.Search(context.Background(), "AI when:1d", 10)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
}

func TestSourceLabel(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Headline - Publisher", "Publisher"},
		{"Hyphen-ated headline - 매일경제", "매일경제"},
		{"No separator here", "Unknown"},
		{"Trailing separator - ", "Unknown"},
	}
	for _, tc := range cases {
		if got := sourceLabel(tc.title); got != tc.want {
			t.Errorf("sourceLabel(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSearchFallsBackToNowWithoutDate(t *testing.T) {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
<item><title>Dateless - Pub</title><link>https://news.google.com/rss/articles/x</link></item>
</channel></rss>`
	client := newFakeClient()
	s := newTestSearchClient(client)
	feedURL := s.buildFeedURL("AI when:1d")
	client.on(http.MethodGet, feedURL, &fakeResponse{body: []byte(feed)})

	articles, err := s.Search(context.Background(), "AI when:1d", 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	want := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if !articles[0].PublishedAt.Equal(want) {
		t.Errorf("published = %v, want substituted now %v", articles[0].PublishedAt, want)
	}
}
