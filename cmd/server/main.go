package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"claimflow/internal/attestation/handler"
	"claimflow/internal/attestation/metrics"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/policy"
	"claimflow/internal/attestation/service"
	"claimflow/internal/condition"
	"claimflow/internal/functions"
	jwttoken "claimflow/internal/jwt_token"
	"claimflow/internal/platform/config"
	"claimflow/internal/platform/httpserver"
	"claimflow/internal/platform/logger"
	platformmetrics "claimflow/internal/platform/metrics"
	"claimflow/internal/platform/middleware"
	"claimflow/internal/plugin"
	"claimflow/internal/schema"
	httptransport "claimflow/internal/transport/http"
)

// main wires dependencies and runs the HTTP server, the internal actor worker
// and the plugin response consumer until a signal arrives. Business logic
// lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("claimflow stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("claimflow stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	definitions, err := schema.Load(os.DirFS(cfg.SchemaDir))
	if err != nil {
		return fmt.Errorf("load schemas from %s: %w", cfg.SchemaDir, err)
	}
	log.Info("schemas loaded", "entity_types", definitions.EntityTypes())

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	resolver, err := policy.New(definitions,
		policy.WithLogger(log),
		policy.WithSearcher(infra.searcher),
		policy.WithStore(infra.store),
		policy.WithPolicySearch(cfg.Workflow.PolicySearchEnabled),
	)
	if err != nil {
		return err
	}

	dispatcher := plugin.NewDispatcher(infra.publisher)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithSearcher(infra.searcher),
		service.WithConditionResolver(condition.New()),
		service.WithDefinitions(definitions),
		service.WithFunctionExecutor(functions.New()),
		service.WithRevocationLedger(infra.ledger),
	}
	if infra.signer != nil {
		opts = append(opts, service.WithSigner(infra.signer))
	}
	if infra.files != nil {
		opts = append(opts, service.WithFileStorage(infra.files))
	}
	svc, err := service.New(infra.store, resolver, dispatcher, service.Config{
		Enabled:            cfg.Workflow.Enabled,
		SignatureEnabled:   cfg.Workflow.SignatureEnabled,
		FileStorageEnabled: cfg.Workflow.FileStorageEnabled,
		SignatureProvider:  models.SignatureProvider(cfg.Workflow.SignatureProvider),
		UUIDPropertyName:   cfg.Workflow.UUIDPropertyName,
	}, opts...)
	if err != nil {
		return err
	}
	defer svc.Wait()

	worker := plugin.NewWorker(dispatcher.Inbox(),
		plugin.WithWorkerLogger(log),
		plugin.WithActor(plugin.ClaimActorName, plugin.NewClaimActor(infra.store, svc, plugin.WithClaimActorLogger(log))),
	)

	tokens := jwttoken.NewJWTService(cfg.PluginAuth.JWTSigningKey, cfg.PluginAuth.Issuer, cfg.PluginAuth.Audience)
	router := httptransport.NewRouter(httptransport.Deps{
		Attestation: handler.New(svc, resolver, log),
		Auth:        middleware.RequirePluginAuth(jwttoken.NewJWTServiceAdapter(tokens), log),
		Metrics:     platformmetrics.New(),
		Health:      infra.health,
		Logger:      log,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting claimflow", "addr", cfg.Server.Addr)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		return ignoreCanceled(worker.Run(gctx))
	})
	if infra.consumer != nil {
		responses := plugin.NewResponseHandler(svc, plugin.WithResponseLogger(log))
		g.Go(func() error {
			return ignoreCanceled(infra.consumer(responses).Run(gctx))
		})
	}
	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
