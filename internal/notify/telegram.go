// Package notify delivers human-readable run summaries through Telegram.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmyang-dev/ainews-harvester/internal/domain"
	"github.com/jmyang-dev/ainews-harvester/internal/logger"
	"github.com/jmyang-dev/ainews-harvester/pkg/httpclient"
)

const (
	telegramAPIBase  = "https://api.telegram.org"
	maxDigestLines   = 5
	maxHeadlineRunes = 50
)

// Notifier sends HTML-formatted messages to a Telegram chat.
type Notifier struct {
	client   httpclient.Client
	log      logger.Logger
	botToken string
	chatID   string
}

// NewNotifier builds a Telegram notifier. Missing credentials are tolerated:
// sends become no-ops that report failure without erroring the run.
func NewNotifier(client httpclient.Client, log logger.Logger, botToken, chatID string) *Notifier {
	if client == nil {
		client = httpclient.NewRestyClient(10 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Notifier{client: client, log: log, botToken: botToken, chatID: chatID}
}

// SendSuccess delivers the run digest: article count, top headlines and an
// optional storage page link.
func (n *Notifier) SendSuccess(ctx context.Context, articles []domain.Article, storageURL string) bool {
	return n.send(ctx, BuildSuccessMessage(articles, storageURL, time.Now()))
}

// SendError delivers a failure notification.
func (n *Notifier) SendError(ctx context.Context, errorMessage string) bool {
	return n.send(ctx, BuildErrorMessage(errorMessage, time.Now()))
}

// Send delivers an arbitrary pre-rendered HTML message.
func (n *Notifier) Send(ctx context.Context, message string) bool {
	return n.send(ctx, message)
}

func (n *Notifier) send(ctx context.Context, message string) bool {
	if n.botToken == "" || n.chatID == "" {
		n.log.WarnObj("telegram credentials missing, skipping notification", "notify_skip", nil)
		return false
	}

	sendURL := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, n.botToken)
	payload := map[string]any{
		"chat_id":                  n.chatID,
		"text":                     message,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	resp, err := n.client.Post(ctx, sendURL, nil, payload)
	if err != nil {
		n.log.ErrorObj("telegram send failed", "notify_error", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	if resp.StatusCode() != http.StatusOK {
		n.log.ErrorObj("telegram send returned error status", "notify_error", map[string]any{
			"status": resp.StatusCode(),
		})
		return false
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil || !result.OK {
		n.log.ErrorObj("telegram api rejected message", "notify_error", map[string]any{
			"description": result.Description,
		})
		return false
	}
	return true
}

// BuildSuccessMessage renders the run digest in Telegram HTML.
func BuildSuccessMessage(articles []domain.Article, storageURL string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤖 <b>AI 뉴스 수집 완료</b>\n\n")
	fmt.Fprintf(&b, "📅 <b>수집 시간:</b> %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "📊 <b>수집 기사:</b> %d개\n\n", len(articles))

	if len(articles) > 0 {
		b.WriteString("📰 <b>주요 뉴스:</b>\n")
		for i, art := range articles {
			if i == maxDigestLines {
				fmt.Fprintf(&b, "⋯ 외 %d개 기사\n", len(articles)-maxDigestLines)
				break
			}
			title := art.Title
			if runes := []rune(title); len(runes) > maxHeadlineRunes {
				title = string(runes[:maxHeadlineRunes]) + "..."
			}
			fmt.Fprintf(&b, "%d. <b>%s</b>\n   📰 %s\n", i+1, escapeHTML(title), escapeHTML(art.Source))
			if len(art.FoundKeywords) > 0 {
				fmt.Fprintf(&b, "   🔑 %s\n", escapeHTML(strings.Join(art.FoundKeywords, ", ")))
			}
			b.WriteString("\n")
		}
	}

	if storageURL != "" {
		fmt.Fprintf(&b, "📋 <b>전체 기사 보기:</b> <a href='%s'>여기를 클릭하세요</a>\n", storageURL)
	}
	return b.String()
}

// BuildErrorMessage renders a failure notification in Telegram HTML.
func BuildErrorMessage(errorMessage string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❌ <b>AI 뉴스 수집 실패</b>\n\n")
	fmt.Fprintf(&b, "📅 <b>발생 시간:</b> %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "🚨 <b>오류 내용:</b> %s\n", escapeHTML(errorMessage))
	return b.String()
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
