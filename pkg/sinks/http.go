package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// httpSink posts the run digest as JSON to a configured endpoint.
type httpSink struct {
	id      string
	typ     string
	url     string
	method  string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

// newHTTPSink creates an HTTP sink from a config entry.
func newHTTPSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")

	return &httpSink{
		id:      cfg.ID,
		typ:     cfg.Type,
		url:     cfg.HTTP.URL,
		method:  cfg.HTTP.Method,
		headers: cfg.HTTP.Headers,
		client:  client,
		log:     ensureLogger(log),
	}, nil
}

func (h *httpSink) ID() string   { return h.id }
func (h *httpSink) Type() string { return h.typ }

// Deliver posts the event to the endpoint; non-2xx responses are errors.
func (h *httpSink) Deliver(ctx context.Context, evt Event) error {
	req := h.client.R().
		SetContext(ctx).
		SetHeaders(h.headers).
		SetBody(evt)

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		h.log.ErrorObj("http sink send failed", "sink_http_error", map[string]any{
			"sink_id": h.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("http sink %q deliver: %w", h.id, err)
	}
	if resp.IsError() {
		h.log.ErrorObj("http sink returned error status", "sink_http_error", map[string]any{
			"sink_id": h.id,
			"status":  resp.StatusCode(),
		})
		return fmt.Errorf("http sink %q deliver: status %d", h.id, resp.StatusCode())
	}

	h.log.DebugObj("http sink delivered event", "sink_http_delivery", map[string]any{
		"sink_id": h.id,
		"run_id":  evt.RunID,
		"status":  resp.StatusCode(),
	})
	return nil
}
