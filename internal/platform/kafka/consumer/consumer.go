// Package consumer polls a Kafka consumer group and hands each record to a
// Handler, committing offsets once the batch has been processed.
package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a consumed record stripped of broker metadata.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Partition int32
	Offset    int64
}

// Handler processes one message. A returned error is retried; a nil error
// commits the record.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Client is the part of *kgo.Client the consumer needs.
type Client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 500 * time.Millisecond
)

// Consumer runs the poll loop.
type Consumer struct {
	client       Client
	handler      Handler
	logger       *slog.Logger
	maxAttempts  int
	retryBackoff time.Duration
}

type Option func(*Consumer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// WithRetry sets how often a failing record is handled before it is skipped.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Consumer) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		c.retryBackoff = backoff
	}
}

func New(client Client, handler Handler, opts ...Option) *Consumer {
	c := &Consumer{
		client:       client,
		handler:      handler,
		logger:       slog.Default(),
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.ErrorContext(ctx, "kafka fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var done []*kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			c.handle(ctx, r)
			done = append(done, r)
		})
		if len(done) == 0 {
			continue
		}
		if err := c.client.CommitRecords(ctx, done...); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "failed to commit offsets",
				"records", len(done),
				"error", err,
			)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, r *kgo.Record) {
	msg := fromRecord(r)
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.handler.Handle(ctx, msg); err == nil {
			return
		}
		if attempt == c.maxAttempts || !sleep(ctx, c.retryBackoff) {
			break
		}
	}
	c.logger.ErrorContext(ctx, "dropping message after failed handling",
		"topic", msg.Topic,
		"key", string(msg.Key),
		"partition", msg.Partition,
		"offset", msg.Offset,
		"error", err,
	)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func fromRecord(r *kgo.Record) *Message {
	msg := &Message{
		Topic:     r.Topic,
		Key:       r.Key,
		Value:     r.Value,
		Partition: r.Partition,
		Offset:    r.Offset,
	}
	if len(r.Headers) > 0 {
		msg.Headers = make(map[string]string, len(r.Headers))
		for _, h := range r.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}
	}
	return msg
}
