package collector

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmyang-dev/ainews-harvester/internal/logger"
	"github.com/jmyang-dev/ainews-harvester/pkg/httpclient"
)

// URLResolver resolves aggregator-wrapped links to their canonical origin URL
// by following redirects. Resolution failure degrades the record but never
// drops it: the original link is returned unchanged.
type URLResolver struct {
	client httpclient.Client
	log    logger.Logger
}

// NewURLResolver builds a resolver with the given HTTP client.
func NewURLResolver(client httpclient.Client, log logger.Logger) *URLResolver {
	if client == nil {
		client = httpclient.NewRestyClient(10 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &URLResolver{client: client, log: log}
}

// Resolve returns the canonical origin URL for the given link. Links whose
// host is not the aggregator's own domain are already canonical.
func (r *URLResolver) Resolve(ctx context.Context, link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	host := strings.ToLower(parsed.Hostname())
	if host != aggregatorHost && !strings.HasSuffix(host, "."+aggregatorHost) {
		return link
	}

	resp, err := r.client.Head(ctx, link, nil)
	if err == nil && resp.StatusCode() == http.StatusMethodNotAllowed {
		// Some origins reject HEAD; retry with GET.
		resp, err = r.client.Get(ctx, link, nil)
	}
	if err != nil {
		r.log.WarnObj("redirect resolution failed, keeping aggregator link", "url_resolve_failed", map[string]any{
			"url":   link,
			"error": err.Error(),
		})
		return link
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		r.log.WarnObj("redirect resolution returned error status, keeping aggregator link", "url_resolve_failed", map[string]any{
			"url":    link,
			"status": resp.StatusCode(),
		})
		return link
	}

	if final := resp.FinalURL(); final != "" {
		return final
	}
	return link
}
