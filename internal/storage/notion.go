// Package storage persists collected articles into a Notion database page
// and returns the page URL for cross-linking in notifications.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jmyang-dev/ainews-harvester/internal/domain"
	"github.com/jmyang-dev/ainews-harvester/internal/logger"
	"github.com/jmyang-dev/ainews-harvester/pkg/httpclient"
)

const (
	notionAPIBase = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"

	maxBulletRunes = 1900 // Notion rich text blocks cap at 2000 characters
)

// NotionStore creates one page per harvest run in a Notion database.
type NotionStore struct {
	client     httpclient.Client
	log        logger.Logger
	apiKey     string
	databaseID string
	now        func() time.Time
}

// NewNotionStore builds a storage sink for the given database.
func NewNotionStore(client httpclient.Client, log logger.Logger, apiKey, databaseID string) *NotionStore {
	if client == nil {
		client = httpclient.NewRestyClient(30 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &NotionStore{client: client, log: log, apiKey: apiKey, databaseID: databaseID, now: time.Now}
}

// Save creates a run page holding every article as a headed bullet section
// and returns the page URL.
func (s *NotionStore) Save(ctx context.Context, articles []domain.Article) (string, error) {
	if s.apiKey == "" || s.databaseID == "" {
		return "", fmt.Errorf("notion credentials are not configured")
	}
	if len(articles) == 0 {
		return "", fmt.Errorf("no articles to save")
	}

	now := s.now()
	page := map[string]any{
		"parent": map[string]any{"database_id": s.databaseID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []any{textBlock(fmt.Sprintf("🤖 AI News - %s %s", now.Format("2006-01-02"), now.Format("15:04")))},
			},
			"Date":     map[string]any{"date": map[string]any{"start": now.Format("2006-01-02")}},
			"Articles": map[string]any{"number": len(articles)},
			"Category": map[string]any{"select": map[string]any{"name": "AI News"}},
		},
		"children": articleBlocks(articles),
	}

	resp, err := s.client.Post(ctx, notionAPIBase+"/pages", s.headers(), page)
	if err != nil {
		return "", fmt.Errorf("create notion page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("create notion page: status %d", resp.StatusCode())
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("decode notion response: %w", err)
	}

	s.log.InfoObj("saved run to notion", "storage_saved", map[string]any{
		"page_url": result.URL,
		"articles": len(articles),
	})
	return result.URL, nil
}

func (s *NotionStore) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + s.apiKey,
		"Notion-Version": notionVersion,
	}
}

// articleBlocks renders each article as a heading, a source/date line and a
// content bullet.
func articleBlocks(articles []domain.Article) []any {
	blocks := make([]any, 0, len(articles)*3)
	for _, art := range articles {
		blocks = append(blocks,
			map[string]any{
				"object": "block",
				"type":   "heading_3",
				"heading_3": map[string]any{
					"rich_text": []any{linkBlock(art.Title, art.URL)},
				},
			},
			bulletBlock(fmt.Sprintf("📰 %s | 🕐 %s", art.Source, art.PublishedAt.Format("2006-01-02 15:04"))),
			bulletBlock(truncate(art.Content, maxBulletRunes)),
		)
	}
	return blocks
}

func bulletBlock(text string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "bulleted_list_item",
		"bulleted_list_item": map[string]any{
			"rich_text": []any{textBlock(text)},
		},
	}
}

func textBlock(content string) map[string]any {
	return map[string]any{
		"type": "text",
		"text": map[string]any{"content": content},
	}
}

func linkBlock(content, url string) map[string]any {
	block := textBlock(content)
	if url != "" {
		block["text"].(map[string]any)["link"] = map[string]any{"url": url}
	}
	return block
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
