package service

import (
	"context"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/state"
	dErrors "claimflow/pkg/domain-errors"
)

// RevokeExistingCredentials revokes signedData at the signer and records its
// fingerprint in the revocation ledger. Empty signedData is a no-op.
func (s *Service) RevokeExistingCredentials(ctx context.Context, entity, entityID, userID, signedData string) (err error) {
	if signedData == "" {
		return nil
	}
	ctx, span := s.startSpan(ctx, "RevokeExistingCredentials")
	defer func() { endSpan(span, err) }()

	if s.ledger == nil {
		return notEnabled("revocation ledger")
	}
	if s.signer != nil {
		if err := s.signer.Revoke(ctx, entity, entityID, signedData); err != nil {
			return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "failed to revoke credential at signer")
		}
	}
	rc := models.NewRevokedCredential(entity, entityID, signedData, userID)
	if err := s.ledger.Record(ctx, rc); err != nil {
		return storeError(err, "failed to record revoked credential")
	}
	s.logger.InfoContext(ctx, "credential revoked",
		"entity_type", entity,
		"entity_id", entityID,
		"signed_hash", rc.SignedHash,
	)
	return nil
}

// CheckIfCredentialIsRevoked reports whether signedData was revoked.
func (s *Service) CheckIfCredentialIsRevoked(ctx context.Context, signedData string) (bool, error) {
	if s.ledger == nil {
		return false, notEnabled("revocation ledger")
	}
	revoked, err := s.ledger.Exists(ctx, models.SignedHash(signedData))
	if err != nil {
		return false, storeError(err, "failed to check revoked credential")
	}
	return revoked, nil
}

// SignEntity signs the whole entity with its schema's credential template and
// stores the credential on the entity. It does nothing when signing is off or
// the entity type has no template.
func (s *Service) SignEntity(ctx context.Context, entityType, entityID string) (err error) {
	if !s.cfg.SignatureEnabled || s.signer == nil || s.definitions == nil {
		return nil
	}
	template := s.definitions.CredentialTemplate(entityType)
	if !(&models.Policy{CredentialTemplate: template}).HasCredentialTemplate() {
		return nil
	}
	ctx, span := s.startSpan(ctx, "SignEntity")
	defer func() { endSpan(span, err) }()

	root, err := s.read(ctx, entityType, entityID)
	if err != nil {
		return err
	}
	entity := jsondoc.CloneDocument(root)
	body, _ := jsondoc.Body(entity, entityType)

	credential, err := s.sign(ctx, entityID, body, template)
	if err != nil {
		return err
	}
	body[s.cfg.SignatureProvider.EntityCredentialField()] = credential.Value(s.cfg.SignatureProvider)
	return s.persist(ctx, entityType, entityID, entity)
}

// settleSuperseded follows up on records demoted by a transition: published
// credentials are revoked and pending claims are closed at the claim actor.
// Failures are logged; the transition stands.
func (s *Service) settleSuperseded(ctx context.Context, policy *models.Policy, res *state.Result, userID string) {
	for _, sup := range res.Superseded {
		switch sup.From {
		case models.StatePublished:
			s.revokeSuperseded(ctx, policy, sup, userID)
		case models.StateAttestationRequested:
			claimID := sup.Record.ClaimID()
			if claimID == "" {
				continue
			}
			if err := s.InvalidateClaim(ctx, policy.AttestorEntity, userID, claimID); err != nil {
				s.logger.ErrorContext(ctx, "failed to close superseded claim",
					"policy", policy.Name,
					"record_id", sup.Record.ID(s.uuidProperty()),
					"claim_id", claimID,
					"error", err,
				)
			}
		}
	}
}

func (s *Service) revokeSuperseded(ctx context.Context, policy *models.Policy, sup state.Superseded, userID string) {
	if !policy.HasCredentialTemplate() {
		return
	}
	credential := sup.Record.Credential(s.cfg.SignatureProvider)
	if credential == "" {
		return
	}
	if err := s.RevokeExistingCredentials(ctx, sup.Record.EntityName(), sup.Record.EntityID(), userID, credential); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke superseded credential",
			"policy", policy.Name,
			"record_id", sup.Record.ID(s.uuidProperty()),
			"error", err,
		)
	}
}
