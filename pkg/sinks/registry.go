package sinks

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Sink from a config entry.
type Builder func(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error)

// Registry maps sink types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	SinkFor(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a sink type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// SinkFor returns the sink built for the provided config.
func (r *registry) SinkFor(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("sink %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no sink registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up known sinks.
func DefaultRegistry() Registry {
	builders := map[string]Builder{
		TypeHTTP:  newHTTPSink,
		TypeQueue: newQueueSink,
	}
	return NewRegistry(builders)
}

// BuildAll instantiates sinks for configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []SinkConfig, log Logger) ([]Sink, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var out []Sink
	for _, cfg := range cfgs {
		sink, err := reg.SinkFor(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		out = append(out, sink)
	}
	return out, nil
}

// DeliverAll fans the event out to every sink, logging failures without
// aborting the remaining deliveries. It returns the number of successful
// deliveries.
func DeliverAll(ctx context.Context, sinks []Sink, evt Event, log Logger) int {
	log = ensureLogger(log)

	delivered := 0
	for _, sink := range sinks {
		if err := sink.Deliver(ctx, evt); err != nil {
			log.ErrorObj("sink delivery failed", "sink_delivery_error", map[string]any{
				"sink_id": sink.ID(),
				"error":   err.Error(),
			})
			continue
		}
		delivered++
	}
	return delivered
}
