package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"claimflow/internal/attestation/ports"
	"claimflow/internal/filestorage"
	"claimflow/internal/platform/config"
	"claimflow/internal/platform/kafka"
	"claimflow/internal/platform/kafka/consumer"
	"claimflow/internal/platform/redis"
	"claimflow/internal/plugin"
	"claimflow/internal/registry/store"
	"claimflow/internal/revocation"
	"claimflow/internal/signing"
	httptransport "claimflow/internal/transport/http"
)

// infra holds the external resources chosen by configuration.
type infra struct {
	store     ports.EntityStore
	searcher  ports.Searcher
	ledger    ports.RevocationLedger
	signer    ports.Signer
	files     ports.FileStorage
	publisher ports.Router
	consumer  func(consumer.Handler) *consumer.Consumer
	health    map[string]httptransport.HealthCheck
	closers   []func()
}

func (i *infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *infra, err error) {
	in := &infra{health: map[string]httptransport.HealthCheck{}}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	if err := in.openStores(ctx, cfg, log); err != nil {
		return nil, err
	}
	if err := in.openCache(ctx, cfg, log); err != nil {
		return nil, err
	}
	if err := in.openKafka(ctx, cfg, log); err != nil {
		return nil, err
	}

	if cfg.Workflow.SignatureEnabled {
		signer, err := signing.NewClient(cfg.Signer.BaseURL, cfg.Signer.Timeout, signing.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("create signer client: %w", err)
		}
		in.signer = signer
	}
	if cfg.Workflow.FileStorageEnabled {
		files, err := filestorage.New(ctx, filestorage.Config{
			Bucket:   cfg.S3.Bucket,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
			Expiry:   cfg.S3.PresignTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("create file storage: %w", err)
		}
		in.files = files
	}
	return in, nil
}

// openStores uses Postgres when configured and in-memory stores otherwise.
func (in *infra) openStores(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.Postgres.URL == "" {
		mem := store.NewInMemory(cfg.Workflow.UUIDPropertyName)
		in.store, in.searcher = mem, mem
		in.ledger = revocation.NewRegistryLedger(mem, mem)
		log.Warn("DATABASE_URL not set, entities are kept in memory")
		return nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("open entity pool: %w", err)
	}
	in.closers = append(in.closers, pool.Close)

	entities := store.NewPostgres(pool, cfg.Workflow.UUIDPropertyName)
	if err := entities.Migrate(ctx); err != nil {
		return err
	}
	in.store, in.searcher = entities, entities
	in.health["postgres"] = pool.Ping

	db, err := sql.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("open ledger database: %w", err)
	}
	in.closers = append(in.closers, func() { _ = db.Close() })
	ledger := revocation.NewPostgresLedger(db)
	if err := ledger.Migrate(ctx); err != nil {
		return err
	}
	in.ledger = ledger
	return nil
}

func (in *infra) openCache(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client == nil {
		return nil
	}
	in.closers = append(in.closers, func() { _ = client.Close() })
	in.health["redis"] = client.Health
	in.ledger = revocation.NewRedisCache(in.ledger, client.Client,
		revocation.WithCacheTTL(cfg.Redis.RevokedTTL),
		revocation.WithCacheLogger(log),
	)
	return nil
}

func (in *infra) openKafka(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("KAFKA_BROKERS not set, only internal attestors are reachable")
		return nil
	}
	kcfg := kafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      cfg.Kafka.ClientID,
		RequestTopic:  cfg.Kafka.RequestTopic,
		ResponseTopic: cfg.Kafka.ResponseTopic,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
	}

	producer, err := kafka.NewProducer(kcfg)
	if err != nil {
		return err
	}
	in.closers = append(in.closers, producer.Close)
	if err := kafka.EnsureTopics(ctx, producer, 1, 1, kcfg.RequestTopic, kcfg.ResponseTopic); err != nil {
		return err
	}
	in.publisher = plugin.NewPublisher(producer, kcfg.RequestTopic, plugin.WithPublisherLogger(log))
	in.health["kafka"] = func(ctx context.Context) error { return kafka.Health(ctx, producer) }

	client, err := kafka.NewConsumer(kcfg)
	if err != nil {
		return err
	}
	in.closers = append(in.closers, client.Close)
	in.consumer = func(h consumer.Handler) *consumer.Consumer {
		return consumer.New(client, h, consumer.WithLogger(log))
	}
	return nil
}
