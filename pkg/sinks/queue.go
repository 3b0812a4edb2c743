package sinks

import (
	"context"
	"fmt"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// queueSink dispatches run digests to a cloud queue provider.
type queueSink struct {
	id       string
	typ      string
	provider string
	sender   queueSender
	log      Logger
}

// newQueueSink creates a queue sink for the configured provider.
func newQueueSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("sink %q missing queue configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)

	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.SQS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queueSink{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func (q *queueSink) ID() string   { return q.id }
func (q *queueSink) Type() string { return q.typ }

// Deliver hands the event to the provider sender.
func (q *queueSink) Deliver(ctx context.Context, evt Event) error {
	if err := q.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue sink %q deliver: %w", q.id, err)
	}

	q.log.DebugObj("queue sink delivered event", "sink_queue_delivery", map[string]any{
		"sink_id":  q.id,
		"provider": q.provider,
		"run_id":   evt.RunID,
	})
	return nil
}
