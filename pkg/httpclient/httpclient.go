package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxRedirectHops = 10

// Response is the subset of an HTTP response the harvester needs.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(key string) string
	// FinalURL is the URL after following redirects; equals the request URL
	// when no redirect occurred.
	FinalURL() string
}

// Client issues outbound HTTP requests with per-client timeouts.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Head(ctx context.Context, url string, headers map[string]string) (Response, error)
	// Post sends body as JSON.
	Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient returns a Client tuned for harvesting: bounded timeout,
// bounded redirect following and a browser-like identity so origin servers
// do not reject the requests outright.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirectHops)).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8").
		SetHeader("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")

	return &restyClient{client: c}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.execute(ctx, http.MethodGet, url, headers)
}

func (c *restyClient) Head(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.execute(ctx, http.MethodHead, url, headers)
}

func (c *restyClient) Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	req := c.client.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(body)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Post(url)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", url, err)
	}
	return &restyResponse{resp: resp, requestURL: url}, nil
}

func (c *restyClient) execute(ctx context.Context, method, url string, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return &restyResponse{resp: resp, requestURL: url}, nil
}

type restyResponse struct {
	resp       *resty.Response
	requestURL string
}

func (r *restyResponse) Body() []byte    { return r.resp.Body() }
func (r *restyResponse) StatusCode() int { return r.resp.StatusCode() }

func (r *restyResponse) Header(key string) string {
	return r.resp.Header().Get(key)
}

func (r *restyResponse) FinalURL() string {
	if raw := r.resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	return r.requestURL
}
