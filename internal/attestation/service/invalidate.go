package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	"claimflow/internal/attestation/state"
	"claimflow/pkg/requestcontext"
)

type staleClaim struct {
	policy         string
	attestorEntity string
	claimID        string
}

// InvalidateAttestationAsync runs InvalidateAttestation in the background.
// The pass survives cancellation of ctx; use Wait to drain pending passes.
func (s *Service) InvalidateAttestationAsync(ctx context.Context, entityType, entityID, userID, editedProperty string) {
	ctx = requestcontext.Detach(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.InvalidateAttestation(ctx, entityType, entityID, userID, editedProperty); err != nil {
			s.logger.ErrorContext(ctx, "attestation invalidation failed",
				"entity_type", entityType,
				"entity_id", entityID,
				"edited_property", editedProperty,
				"error", err,
			)
		}
	}()
}

// InvalidateAttestation marks attestations stale after a direct edit of the
// entity. Published attestations covering the edited property are revoked and
// set INVALID; pending claims whose property data no longer matches the
// entity go back to DRAFT and their attestors are told to drop them. The
// entity is written once, before any attestor is notified.
func (s *Service) InvalidateAttestation(ctx context.Context, entityType, entityID, userID, editedProperty string) (err error) {
	ctx, span := s.startSpan(ctx, "InvalidateAttestation")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("entity.type", entityType),
		attribute.String("edited_property", editedProperty),
	)

	policies := s.policies.Resolve(ctx, entityType)
	if len(policies) == 0 {
		return nil
	}
	root, err := s.read(ctx, entityType, entityID)
	if err != nil {
		return err
	}
	entity := jsondoc.CloneDocument(root)
	body, _ := jsondoc.Body(entity, entityType)

	changed := false
	var claims []staleClaim
	for _, policy := range policies {
		items, ok := body[policy.Name].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			record := models.NewRecord(obj)
			switch record.State() {
			case models.StatePublished:
				if record.Name() == editedProperty || !coversProperty(policy, editedProperty) {
					s.metrics.IncrementInvalidation("unchanged")
					continue
				}
				s.invalidatePublished(ctx, policy, obj, entityType, entityID, userID)
				changed = true
			case models.StateAttestationRequested:
				stale, err := s.claimIsStale(policy, body, obj)
				if err != nil {
					s.metrics.IncrementInvalidation("failed")
					s.logger.ErrorContext(ctx, "failed to recompute attestation property data",
						"entity_type", entityType,
						"entity_id", entityID,
						"policy", policy.Name,
						"record_id", record.ID(s.uuidProperty()),
						"error", err,
					)
					continue
				}
				if !stale {
					s.metrics.IncrementInvalidation("unchanged")
					continue
				}
				to, err := state.Next(record.State(), models.ActionSetToDraft)
				if err != nil {
					continue
				}
				obj[models.FieldState] = string(to)
				s.metrics.IncrementInvalidation("drafted")
				claims = append(claims, staleClaim{
					policy:         policy.Name,
					attestorEntity: policy.AttestorEntity,
					claimID:        record.ClaimID(),
				})
				changed = true
			case models.StateDraft, models.StateInvalid:
			}
		}
		state.MirrorStatus(body, policy.Name)
	}
	if !changed {
		return nil
	}

	if err := s.persist(ctx, entityType, entityID, entity); err != nil {
		return err
	}

	for _, c := range claims {
		if c.claimID == "" {
			s.logger.WarnContext(ctx, "stale claim has no claim id",
				"entity_type", entityType,
				"entity_id", entityID,
				"policy", c.policy,
			)
			continue
		}
		if err := s.InvalidateClaim(ctx, c.attestorEntity, userID, c.claimID); err != nil {
			s.logger.ErrorContext(ctx, "failed to invalidate claim",
				"entity_type", entityType,
				"entity_id", entityID,
				"policy", c.policy,
				"claim_id", c.claimID,
				"error", err,
			)
		}
	}
	return nil
}

// invalidatePublished strips sub-record ids from the record's bookkeeping,
// revokes its credential and sets it INVALID. It mutates obj.
func (s *Service) invalidatePublished(ctx context.Context, policy *models.Policy, obj map[string]any, entityType, entityID, userID string) {
	record := models.NewRecord(obj)
	if refs, ok := obj[models.FieldPropertiesUUID]; ok {
		jsondoc.RemoveKey(refs, s.uuidProperty())
	}

	if credential := record.Credential(s.cfg.SignatureProvider); policy.HasCredentialTemplate() && credential != "" {
		name, id := record.EntityName(), record.EntityID()
		if name == "" {
			name = entityType
		}
		if id == "" {
			id = entityID
		}
		if err := s.RevokeExistingCredentials(ctx, name, id, userID, credential); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke stale credential",
				"entity_type", entityType,
				"entity_id", entityID,
				"policy", policy.Name,
				"error", err,
			)
		}
	}

	to, err := state.Next(record.State(), models.ActionInvalidate)
	if err != nil {
		return
	}
	obj[models.FieldState] = string(to)
	s.metrics.IncrementInvalidation("invalidated")
}

// claimIsStale recomputes a pending claim's property data from the live
// entity and compares it structurally with the stored snapshot.
func (s *Service) claimIsStale(policy *models.Policy, body models.Document, obj map[string]any) (bool, error) {
	refs, err := jsondoc.PropertiesUUID(obj[models.FieldPropertiesUUID])
	if err != nil {
		return false, err
	}
	current, err := jsondoc.ExtractPropertyData(s.uuidProperty(), body, policy.AttestationProperties, refs)
	if err != nil {
		return false, err
	}
	stored := jsondoc.ParseLoose(models.NewRecord(obj).PropertyData())
	return !jsondoc.Equal(current, stored), nil
}

// coversProperty reports whether an edit of property can affect what policy
// attests. An empty property means the edited property is unknown.
func coversProperty(policy *models.Policy, property string) bool {
	if property == "" || len(policy.AttestationProperties) == 0 {
		return true
	}
	for name, path := range policy.AttestationProperties {
		if name == property {
			return true
		}
		root, _, _ := strings.Cut(jsondoc.GJSONPath(path), ".")
		if root == property {
			return true
		}
	}
	return false
}

// InvalidateClaim tells the claim actor to stop tracking claimID. The
// attestor's own record is looked up by the acting user; when it cannot be
// found the message is sent without it.
func (s *Service) InvalidateClaim(ctx context.Context, attestorEntity, userID, claimID string) error {
	inputs := models.Document{
		"claimId": claimID,
		"action":  string(models.ActionSetToDraft),
		"notes":   models.ClaimClosedNote,
	}
	if info := s.attestorInfo(ctx, attestorEntity, userID); info != nil {
		inputs["attestorInfo"] = info
	}

	return s.route(ctx, models.PluginRequestMessage{
		AttestorPlugin:   models.ClaimPluginActor,
		AdditionalInputs: inputs,
		Status:           models.ActionSetToDraft,
		UserID:           userID,
		Date:             requestcontext.Now(ctx),
	})
}

func (s *Service) attestorInfo(ctx context.Context, attestorEntity, userID string) models.Document {
	if s.searcher == nil || attestorEntity == "" || userID == "" {
		return nil
	}
	res, err := s.searcher.Search(ctx, ports.SearchQuery{
		EntityType: attestorEntity,
		Filters:    map[string]ports.Filter{models.FieldOwner: {Op: ports.FilterContains, Value: userID}},
		Limit:      1,
	})
	if err != nil || res == nil || len(res.Entities) == 0 {
		s.logger.WarnContext(ctx, "attestor record not found for claim invalidation",
			"attestor_entity", attestorEntity,
			"user_id", userID,
			"error", err,
		)
		return nil
	}
	return res.Entities[0]
}
