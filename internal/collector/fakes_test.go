package collector

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmyang-dev/ainews-harvester/pkg/httpclient"
)

// fakeResponse implements httpclient.Response for tests.
type fakeResponse struct {
	body     []byte
	status   int
	headers  map[string]string
	finalURL string
}

func (r *fakeResponse) Body() []byte    { return r.body }
func (r *fakeResponse) StatusCode() int { return r.status }

func (r *fakeResponse) Header(key string) string {
	return r.headers[key]
}

func (r *fakeResponse) FinalURL() string { return r.finalURL }

// fakeClient serves canned responses keyed by "METHOD url". Unmatched requests
// error, so a test fails loudly on an unexpected call.
type fakeClient struct {
	responses map[string]*fakeResponse
	errs      map[string]error
	calls     []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: make(map[string]*fakeResponse),
		errs:      make(map[string]error),
	}
}

func (c *fakeClient) on(method, url string, resp *fakeResponse) {
	if resp.status == 0 {
		resp.status = http.StatusOK
	}
	if resp.finalURL == "" {
		resp.finalURL = url
	}
	c.responses[method+" "+url] = resp
}

func (c *fakeClient) fail(method, url string, err error) {
	c.errs[method+" "+url] = err
}

func (c *fakeClient) dispatch(method, url string) (httpclient.Response, error) {
	key := method + " " + url
	c.calls = append(c.calls, key)
	if err, ok := c.errs[key]; ok {
		return nil, err
	}
	if resp, ok := c.responses[key]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("unexpected request: %s", key)
}

func (c *fakeClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	return c.dispatch(http.MethodGet, url)
}

func (c *fakeClient) Head(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	return c.dispatch(http.MethodHead, url)
}

func (c *fakeClient) Post(_ context.Context, url string, _ map[string]string, _ any) (httpclient.Response, error) {
	return c.dispatch(http.MethodPost, url)
}
