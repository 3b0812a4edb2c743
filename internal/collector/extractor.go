package collector

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/jmyang-dev/ainews-harvester/internal/logger"
	"github.com/jmyang-dev/ainews-harvester/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB

	// DefaultMinContentLength is the minimum extracted text length (in
	// runes) for a selector match to be accepted.
	DefaultMinContentLength = 200
)

// ContentExtractor fetches origin pages and extracts the main readable text
// using a cascading selector strategy: publisher profile, then generic
// profile, then a bare paragraph scan.
type ContentExtractor struct {
	client           httpclient.Client
	log              logger.Logger
	minContentLength int
}

// NewContentExtractor builds an extractor. minContentLength <= 0 selects the
// default threshold.
func NewContentExtractor(client httpclient.Client, log logger.Logger, minContentLength int) *ContentExtractor {
	if client == nil {
		client = httpclient.NewRestyClient(20 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if minContentLength <= 0 {
		minContentLength = DefaultMinContentLength
	}
	return &ContentExtractor{client: client, log: log, minContentLength: minContentLength}
}

// Extract returns the readable body text of the page at pageURL, or the empty
// string when the page cannot be fetched or yields no usable text. An empty
// result is an expected outcome for a fraction of sources, not an error.
func (e *ContentExtractor) Extract(ctx context.Context, pageURL string) string {
	resp, err := e.client.Get(ctx, pageURL, nil)
	if err != nil {
		e.log.WarnObj("article fetch failed", "crawl_failed", map[string]any{
			"url":   pageURL,
			"error": err.Error(),
		})
		return ""
	}
	if resp.StatusCode() != http.StatusOK {
		e.log.WarnObj("article fetch returned non-ok status", "crawl_failed", map[string]any{
			"url":    pageURL,
			"status": resp.StatusCode(),
		})
		return ""
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	body = decodeBody(body, resp.Header("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.log.WarnObj("article html parse failed", "crawl_failed", map[string]any{
			"url":   pageURL,
			"error": err.Error(),
		})
		return ""
	}

	host := pageHost(resp.FinalURL(), pageURL)
	return e.ExtractFromDocument(doc, host)
}

// ExtractFromDocument runs the selector cascade against an already parsed
// document. Split out from Extract so the cascade is testable without HTTP.
func (e *ContentExtractor) ExtractFromDocument(doc *goquery.Document, host string) string {
	profile := profileFor(host)

	for _, selector := range profile.Selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		sel.Find(strings.Join(boilerplateSelectors, ", ")).Remove()

		text := visibleText(sel)
		if utf8.RuneCountInString(text) > e.minContentLength {
			return text
		}
	}

	// Fallback: every paragraph on the page, space-joined.
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.Join(strings.Fields(p.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// pageHost prefers the post-redirect URL's host for profile lookup.
func pageHost(finalURL, requestURL string) string {
	for _, candidate := range []string{finalURL, requestURL} {
		if candidate == "" {
			continue
		}
		if parsed, err := url.Parse(candidate); err == nil && parsed.Hostname() != "" {
			return parsed.Hostname()
		}
	}
	return ""
}

// decodeBody re-decodes legacy-encoded pages to UTF-8. Korean publishers
// still serve EUC-KR; iso-8859-1/ascii declarations on such pages are almost
// always mislabeled UTF-8 and the bytes are used as-is.
func decodeBody(body []byte, contentType string) []byte {
	charset := strings.ToLower(contentType)
	if !strings.Contains(charset, "charset=") {
		head := body
		if len(head) > 1024 {
			head = head[:1024]
		}
		charset = strings.ToLower(string(head))
	}

	if strings.Contains(charset, "euc-kr") || strings.Contains(charset, "ks_c_5601") || strings.Contains(charset, "cp949") {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), korean.EUCKR.NewDecoder()))
		if err == nil {
			return decoded
		}
	}
	return body
}

// visibleText extracts the text of a subtree with single spaces between
// adjacent text nodes.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
