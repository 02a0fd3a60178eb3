// Package policy locates attestation policies for an entity type. Policies
// come from the entity type's schema and, when enabled, from registry
// entities of type AttestationPolicy.
package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	dErrors "claimflow/pkg/domain-errors"
	"claimflow/pkg/platform/sentinel"
)

// Resolver merges schema and dynamic policies.
type Resolver struct {
	definitions   ports.Definitions
	searcher      ports.Searcher
	store         ports.EntityStore
	searchEnabled bool
	logger        *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithSearcher sets the searcher used for dynamic policies and admin lookups.
func WithSearcher(searcher ports.Searcher) Option {
	return func(r *Resolver) {
		r.searcher = searcher
	}
}

// WithPolicySearch toggles the lookup of dynamically registered policies.
func WithPolicySearch(enabled bool) Option {
	return func(r *Resolver) {
		r.searchEnabled = enabled
	}
}

// WithStore sets the entity store used by policy administration.
func WithStore(store ports.EntityStore) Option {
	return func(r *Resolver) {
		r.store = store
	}
}

func New(definitions ports.Definitions, opts ...Option) (*Resolver, error) {
	if definitions == nil {
		return nil, fmt.Errorf("definitions are required")
	}
	r := &Resolver{
		definitions: definitions,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns dynamic policies followed by schema policies. Duplicates are
// removed by identity only, so two distinct policies sharing a name are both
// returned. A failing search degrades to schema policies.
func (r *Resolver) Resolve(ctx context.Context, entityType string) []*models.Policy {
	var dynamic []*models.Policy
	if r.searchEnabled && r.searcher != nil {
		found, err := r.search(ctx, ports.SearchQuery{
			EntityType: models.PolicyEntityType,
			Filters:    map[string]ports.Filter{"entity": {Op: ports.FilterEq, Value: entityType}},
		})
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to search attestation policies",
				"entity_type", entityType,
				"error", err,
			)
		}
		dynamic = found
	}
	return lo.Uniq(append(dynamic, r.definitions.Policies(entityType)...))
}

// ResolvePolicy returns the first policy named name.
func (r *Resolver) ResolvePolicy(ctx context.Context, entityType, name string) (*models.Policy, error) {
	p, ok := lo.Find(r.Resolve(ctx, entityType), func(p *models.Policy) bool {
		return p.Name == name
	})
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", entityType, name, models.ErrPolicyNotFound)
	}
	return p, nil
}

// IsPolicyNameUsed reports whether entityType already has a policy named name.
func (r *Resolver) IsPolicyNameUsed(ctx context.Context, entityType, name string) bool {
	return lo.ContainsBy(r.Resolve(ctx, entityType), func(p *models.Policy) bool {
		return p.Name == name
	})
}

// =============================================================================
// Administration
// =============================================================================

// CreatePolicy registers a dynamic policy owned by userID.
func (r *Resolver) CreatePolicy(ctx context.Context, userID string, p *models.Policy) (string, error) {
	if r.store == nil {
		return "", dErrors.Wrap(models.ErrServiceNotEnabled, dErrors.CodeServiceUnavailable, "policy store not configured")
	}
	if p == nil || p.Name == "" || p.Entity == "" {
		return "", dErrors.New(dErrors.CodeValidation, "policy name and entity are required")
	}
	if r.IsPolicyNameUsed(ctx, p.Entity, p.Name) {
		return "", dErrors.New(dErrors.CodeConflict, "policy name already used")
	}
	p.CreatedBy = userID
	doc, err := toDocument(p)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode policy")
	}
	id, err := r.store.Create(ctx, models.PolicyEntityType, doc)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create policy")
	}
	p.ID = id
	return id, nil
}

// UpdatePolicy replaces a dynamic policy.
func (r *Resolver) UpdatePolicy(ctx context.Context, id string, p *models.Policy) error {
	existing, err := r.FindPolicyByID(ctx, id)
	if err != nil {
		return err
	}
	p.ID = id
	if p.CreatedBy == "" {
		p.CreatedBy = existing.CreatedBy
	}
	doc, err := toDocument(p)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode policy")
	}
	if err := r.store.Update(ctx, models.PolicyEntityType, id, models.Document{models.PolicyEntityType: doc}); err != nil {
		return dErrors.Wrap(err, storeCode(err), "failed to update policy")
	}
	return nil
}

// FindPolicyByID reads one dynamic policy.
func (r *Resolver) FindPolicyByID(ctx context.Context, id string) (*models.Policy, error) {
	if r.store == nil {
		return nil, dErrors.Wrap(models.ErrServiceNotEnabled, dErrors.CodeServiceUnavailable, "policy store not configured")
	}
	root, err := r.store.Read(ctx, models.PolicyEntityType, id)
	if err != nil {
		return nil, dErrors.Wrap(err, storeCode(err), "failed to read policy")
	}
	p, err := fromDocument(root[models.PolicyEntityType])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode policy")
	}
	return p, nil
}

// DeletePolicy removes a dynamic policy.
func (r *Resolver) DeletePolicy(ctx context.Context, id string) error {
	if r.store == nil {
		return dErrors.Wrap(models.ErrServiceNotEnabled, dErrors.CodeServiceUnavailable, "policy store not configured")
	}
	if err := r.store.Delete(ctx, models.PolicyEntityType, id); err != nil {
		return dErrors.Wrap(err, storeCode(err), "failed to delete policy")
	}
	return nil
}

// FindPoliciesByCreator lists dynamic policies created by userID.
func (r *Resolver) FindPoliciesByCreator(ctx context.Context, userID string) ([]*models.Policy, error) {
	if r.searcher == nil {
		return nil, dErrors.Wrap(models.ErrServiceNotEnabled, dErrors.CodeServiceUnavailable, "policy search not configured")
	}
	policies, err := r.search(ctx, ports.SearchQuery{
		EntityType: models.PolicyEntityType,
		Filters:    map[string]ports.Filter{"createdBy": {Op: ports.FilterEq, Value: userID}},
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search policies")
	}
	return policies, nil
}

func (r *Resolver) search(ctx context.Context, q ports.SearchQuery) ([]*models.Policy, error) {
	res, err := r.searcher.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	policies := make([]*models.Policy, 0, len(res.Entities))
	for _, doc := range res.Entities {
		p, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func storeCode(err error) dErrors.Code {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.CodeNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.CodeConflict
	default:
		return dErrors.CodeInternal
	}
}

func toDocument(p *models.Policy) (models.Document, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDocument(v any) (*models.Policy, error) {
	if v == nil {
		return nil, sentinel.ErrNotFound
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var p models.Policy
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	p.ResolveCompletion()
	return &p, nil
}
