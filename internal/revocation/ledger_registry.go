// Package revocation records revoked credentials by content fingerprint and
// answers whether a credential was revoked.
package revocation

import (
	"context"
	"encoding/json"
	"fmt"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
)

// RegistryLedger keeps revocations as RevokedCredential entities in the
// registry itself.
type RegistryLedger struct {
	store    ports.EntityStore
	searcher ports.Searcher
}

// NewRegistryLedger constructs a ledger over the registry entity store.
func NewRegistryLedger(store ports.EntityStore, searcher ports.Searcher) *RegistryLedger {
	return &RegistryLedger{store: store, searcher: searcher}
}

func (l *RegistryLedger) Record(ctx context.Context, rc models.RevokedCredential) error {
	raw, err := json.Marshal(rc)
	if err != nil {
		return fmt.Errorf("encode revoked credential: %w", err)
	}
	body, err := jsondoc.Decode(raw)
	if err != nil {
		return err
	}
	if _, err := l.store.Create(ctx, models.RevokedCredentialEntityType, body); err != nil {
		return fmt.Errorf("record revoked credential: %w", err)
	}
	return nil
}

func (l *RegistryLedger) Exists(ctx context.Context, signedHash string) (bool, error) {
	if signedHash == "" {
		return false, nil
	}
	res, err := l.searcher.Search(ctx, ports.SearchQuery{
		EntityType: models.RevokedCredentialEntityType,
		Filters: map[string]ports.Filter{
			"signedHash": {Op: ports.FilterEq, Value: signedHash},
		},
		Limit: 1,
	})
	if err != nil {
		return false, fmt.Errorf("search revoked credentials: %w", err)
	}
	return res.TotalCount > 0, nil
}
