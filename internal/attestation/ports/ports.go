// Package ports declares the collaborators the workflow engine depends on.
// Implementations live in the registry, plugin, signing, filestorage,
// revocation, condition, functions and schema packages.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"io"

	"claimflow/internal/attestation/models"
)

// EntityStore reads and writes whole entity snapshots. Read returns the root
// document {"<entityType>": {...}}; Update replaces it atomically and returns
// sentinel.ErrConflict when a concurrent write won.
type EntityStore interface {
	Read(ctx context.Context, entityType, id string) (models.Document, error)
	Update(ctx context.Context, entityType, id string, root models.Document) error
	Create(ctx context.Context, entityType string, body models.Document) (string, error)
	Delete(ctx context.Context, entityType, id string) error
}

// FilterOp is a search predicate operator.
type FilterOp string

const (
	FilterEq       FilterOp = "eq"
	FilterContains FilterOp = "contains"
)

// Filter matches a top-level field of the entity body.
type Filter struct {
	Op    FilterOp
	Value string
}

// SearchQuery selects entities of one type.
type SearchQuery struct {
	EntityType string
	Filters    map[string]Filter
	Limit      int
}

// SearchResult holds matching entity bodies.
type SearchResult struct {
	Entities   []models.Document
	TotalCount int
}

// Searcher runs filtered queries over stored entities.
type Searcher interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
}

// ConditionResolver binds a policy condition to the requesting entity so the
// attestor can evaluate it without reading the entity again.
type ConditionResolver interface {
	Resolve(ctx context.Context, body models.Document, matcher, condition string) (string, error)
}

// Signer issues and revokes credentials.
type Signer interface {
	Sign(ctx context.Context, req models.SignRequest) (*models.SignedCredential, error)
	Revoke(ctx context.Context, entityName, entityID, signedData string) error
}

// FileStorage stores attested documents.
type FileStorage interface {
	Save(ctx context.Context, r io.Reader, path string) error
	SignedURL(ctx context.Context, path string) (string, error)
}

// Router delivers plugin requests. Route must not block on the attestor.
type Router interface {
	Route(ctx context.Context, msg models.PluginRequestMessage) error
}

// Definitions exposes per-entity-type schema configuration.
type Definitions interface {
	Policies(entityType string) []*models.Policy
	FunctionDefinition(entityType, name string) (*models.FunctionDefinition, bool)
	CredentialTemplate(entityType string) json.RawMessage
}

// FunctionExecutor runs a completion function against an input document.
type FunctionExecutor interface {
	Execute(ctx context.Context, callSpec string, def models.FunctionDefinition, input models.Document) (models.Document, error)
}

// RevocationLedger records revoked credential fingerprints.
type RevocationLedger interface {
	Record(ctx context.Context, rc models.RevokedCredential) error
	Exists(ctx context.Context, signedHash string) (bool, error)
}
