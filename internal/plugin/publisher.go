// Package plugin delivers attestation requests to attestor plugins and feeds
// their verdicts back into the workflow engine. External plugins are reached
// over Kafka; internal actors run in-process behind a bounded queue.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"claimflow/internal/attestation/models"
	"claimflow/pkg/platform/sentinel"
)

// Record headers set on every plugin request.
const (
	HeaderStatus = "status"
	HeaderPolicy = "policy"
	HeaderEntity = "entity"
)

// Producer is the part of *kgo.Client used for publishing.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes plugin requests to a Kafka topic keyed by attestor plugin,
// so requests for one plugin stay ordered.
type Publisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(producer Producer, topic string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Route waits for the broker acknowledgement only; the attestor answers later
// on the response topic.
func (p *Publisher) Route(ctx context.Context, msg models.PluginRequestMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode plugin request: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(msg.RoutingKey()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderStatus, Value: []byte(msg.Status)},
			{Key: HeaderPolicy, Value: []byte(msg.PolicyName)},
			{Key: HeaderEntity, Value: []byte(msg.SourceEntity)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish plugin request",
			"topic", p.topic,
			"attestor_plugin", msg.AttestorPlugin,
			"policy", msg.PolicyName,
			"error", err,
		)
		return fmt.Errorf("publish plugin request: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
