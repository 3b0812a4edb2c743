package collector

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestResolveNonAggregatorUnchanged(t *testing.T) {
	client := newFakeClient()
	r := NewURLResolver(client, nil)

	link := "https://example.com/a"
	if got := r.Resolve(context.Background(), link); got != link {
		t.Errorf("Resolve = %q, want unchanged %q", got, link)
	}
	if len(client.calls) != 0 {
		t.Errorf("expected no HTTP calls, got %v", client.calls)
	}
}

func TestResolveFollowsRedirect(t *testing.T) {
	client := newFakeClient()
	r := NewURLResolver(client, nil)

	link := "https://news.google.com/rss/articles/abc"
	client.on(http.MethodHead, link, &fakeResponse{finalURL: "https://example.com/story"})

	if got := r.Resolve(context.Background(), link); got != "https://example.com/story" {
		t.Errorf("Resolve = %q, want origin URL", got)
	}
}

func TestResolveRetriesWithGetOn405(t *testing.T) {
	client := newFakeClient()
	r := NewURLResolver(client, nil)

	link := "https://news.google.com/rss/articles/abc"
	client.on(http.MethodHead, link, &fakeResponse{status: http.StatusMethodNotAllowed})
	client.on(http.MethodGet, link, &fakeResponse{finalURL: "https://example.com/story"})

	if got := r.Resolve(context.Background(), link); got != "https://example.com/story" {
		t.Errorf("Resolve = %q, want origin URL from GET retry", got)
	}
}

func TestResolveFailureKeepsOriginal(t *testing.T) {
	client := newFakeClient()
	r := NewURLResolver(client, nil)

	link := "https://news.google.com/rss/articles/abc"
	client.fail(http.MethodHead, link, errors.New("timeout"))

	if got := r.Resolve(context.Background(), link); got != link {
		t.Errorf("Resolve = %q, want original link on failure", got)
	}
}

func TestResolveErrorStatusKeepsOriginal(t *testing.T) {
	client := newFakeClient()
	r := NewURLResolver(client, nil)

	link := "https://news.google.com/rss/articles/abc"
	client.on(http.MethodHead, link, &fakeResponse{status: http.StatusNotFound})

	if got := r.Resolve(context.Background(), link); got != link {
		t.Errorf("Resolve = %q, want original link on 404", got)
	}
}
