// Package service implements the attestation workflow engine: it raises
// claims, folds attestor verdicts back into entities, chains follow-up steps,
// signs and revokes credentials and invalidates attestations that went stale.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"claimflow/internal/attestation/metrics"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	"claimflow/internal/attestation/state"
	dErrors "claimflow/pkg/domain-errors"
	"claimflow/pkg/platform/sentinel"
)

// PolicyResolver finds the policies that apply to an entity type.
type PolicyResolver interface {
	Resolve(ctx context.Context, entityType string) []*models.Policy
	ResolvePolicy(ctx context.Context, entityType, name string) (*models.Policy, error)
}

// Config holds the feature toggles of the engine.
type Config struct {
	// Enabled turns on automatic claim raising.
	Enabled            bool
	SignatureEnabled   bool
	FileStorageEnabled bool
	SignatureProvider  models.SignatureProvider
	UUIDPropertyName   string
}

// Service is the attestation workflow engine. It keeps no entity state
// between calls; every operation reads, transforms and writes one snapshot.
type Service struct {
	cfg         Config
	store       ports.EntityStore
	policies    PolicyResolver
	router      ports.Router
	searcher    ports.Searcher
	conditions  ports.ConditionResolver
	signer      ports.Signer
	files       ports.FileStorage
	definitions ports.Definitions
	functions   ports.FunctionExecutor
	ledger      ports.RevocationLedger
	machine     *state.Machine
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      trace.Tracer
	newID       func() string

	// background invalidation passes
	inflight sync.WaitGroup
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithSearcher(searcher ports.Searcher) Option {
	return func(s *Service) {
		s.searcher = searcher
	}
}

func WithConditionResolver(resolver ports.ConditionResolver) Option {
	return func(s *Service) {
		s.conditions = resolver
	}
}

func WithSigner(signer ports.Signer) Option {
	return func(s *Service) {
		s.signer = signer
	}
}

func WithFileStorage(files ports.FileStorage) Option {
	return func(s *Service) {
		s.files = files
	}
}

func WithDefinitions(definitions ports.Definitions) Option {
	return func(s *Service) {
		s.definitions = definitions
	}
}

func WithFunctionExecutor(executor ports.FunctionExecutor) Option {
	return func(s *Service) {
		s.functions = executor
	}
}

func WithRevocationLedger(ledger ports.RevocationLedger) Option {
	return func(s *Service) {
		s.ledger = ledger
	}
}

// WithIDGenerator overrides how attestation record ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func New(store ports.EntityStore, policies PolicyResolver, router ports.Router, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("entity store is required")
	}
	if policies == nil {
		return nil, fmt.Errorf("policy resolver is required")
	}
	if router == nil {
		return nil, fmt.Errorf("plugin router is required")
	}
	if cfg.SignatureProvider == "" {
		cfg.SignatureProvider = models.SignatureProviderV1
	}

	svc := &Service{
		cfg:      cfg,
		store:    store,
		policies: policies,
		router:   router,
		machine:  state.New(cfg.UUIDPropertyName),
		logger:   slog.Default(),
		tracer:   otel.Tracer("claimflow/attestation"),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Wait blocks until background invalidation passes have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) uuidProperty() string {
	return s.machine.UUIDProperty()
}

func (s *Service) read(ctx context.Context, entityType, id string) (models.Document, error) {
	root, err := s.store.Read(ctx, entityType, id)
	if err != nil {
		return nil, storeError(err, "failed to read entity")
	}
	if _, ok := root[entityType].(map[string]any); !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "entity not found")
	}
	return root, nil
}

func (s *Service) persist(ctx context.Context, entityType, id string, root models.Document) error {
	if err := s.store.Update(ctx, entityType, id, root); err != nil {
		return storeError(err, "failed to update entity")
	}
	return nil
}

func (s *Service) route(ctx context.Context, msg models.PluginRequestMessage) error {
	if err := s.router.Route(ctx, msg); err != nil {
		s.metrics.IncrementDispatch(msg.AttestorPlugin, "failed")
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "failed to route plugin request")
	}
	s.metrics.IncrementDispatch(msg.AttestorPlugin, "routed")
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "attestation."+name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// storeError translates storage sentinels into coded errors. Conflicts are
// surfaced as such so callers can retry with a fresh snapshot.
func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "entity not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "entity was modified concurrently")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// transitionError translates lifecycle failures into coded errors.
func transitionError(err error) error {
	switch {
	case errors.Is(err, models.ErrUnknownAction), errors.Is(err, models.ErrInvalidPropertyURI):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid attestation action")
	case errors.Is(err, models.ErrRecordNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "attestation record not found")
	case errors.Is(err, models.ErrInvalidTransition):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid attestation state transition")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply attestation action")
	}
}

func policyError(err error) error {
	if errors.Is(err, models.ErrPolicyNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "attestation policy not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve attestation policy")
}

func notEnabled(service string) error {
	return dErrors.Wrap(fmt.Errorf("%s: %w", service, models.ErrServiceNotEnabled),
		dErrors.CodeServiceUnavailable, service+" not enabled")
}
