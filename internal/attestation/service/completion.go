package service

import (
	"context"
	"encoding/json"
	"errors"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	dErrors "claimflow/pkg/domain-errors"
)

// complete runs the follow-up step of a granted policy against the entity as
// persisted by the grant. Configuration gaps are logged; the grant stands.
func (s *Service) complete(ctx context.Context, resp models.PluginResponseMessage, policy *models.Policy, entity models.Document) error {
	switch policy.CompletionType {
	case models.CompletionAttestation:
		return s.completeWithAttestation(ctx, resp, policy)
	case models.CompletionFunction:
		return s.completeWithFunction(ctx, resp, policy, entity)
	default:
		s.logger.ErrorContext(ctx, "invalid completion configuration",
			"entity_type", resp.SourceEntity,
			"policy", policy.Name,
			"on_complete", policy.OnComplete,
			"completion_type", policy.CompletionType,
		)
		return nil
	}
}

// completeWithAttestation raises the next policy's claim with the grant
// response as its property data.
func (s *Service) completeWithAttestation(ctx context.Context, resp models.PluginResponseMessage, policy *models.Policy) error {
	next, err := s.policies.ResolvePolicy(ctx, resp.SourceEntity, policy.CompletionValue)
	if err != nil {
		s.logger.ErrorContext(ctx, "next attestation policy not found",
			"entity_type", resp.SourceEntity,
			"entity_id", resp.SourceUUID,
			"policy", policy.Name,
			"next_policy", policy.CompletionValue,
			"error", err,
		)
		return nil
	}

	_, err = s.TriggerAttestation(ctx, models.AttestationRequest{
		EntityName:      resp.SourceEntity,
		EntityID:        resp.SourceUUID,
		Name:            next.Name,
		PropertyData:    jsondoc.ParseLoose(resp.Response),
		PropertiesUUID:  resp.PropertiesUUIDs,
		AdditionalInput: resp.AdditionalData,
		UserID:          resp.UserID,
		EmailID:         resp.EmailID,
	}, next)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to trigger next attestation",
			"entity_type", resp.SourceEntity,
			"entity_id", resp.SourceUUID,
			"policy", policy.Name,
			"next_policy", next.Name,
			"error", err,
		)
	}
	return nil
}

// completeWithFunction executes the policy's function over the entity plus the
// plugin response and persists the output only when it differs. A failing
// function is logged; the grant stands.
func (s *Service) completeWithFunction(ctx context.Context, resp models.PluginResponseMessage, policy *models.Policy, entity models.Document) error {
	if s.definitions == nil || s.functions == nil {
		return notEnabled("function executor")
	}
	def, ok := s.definitions.FunctionDefinition(resp.SourceEntity, policy.CompletionFunctionName)
	if !ok {
		s.logger.ErrorContext(ctx, "invalid function name specified for onComplete",
			"entity_type", resp.SourceEntity,
			"policy", policy.Name,
			"function", policy.CompletionFunctionName,
			"error", models.ErrFunctionNotFound,
		)
		return nil
	}

	body, ok := jsondoc.Body(entity, resp.SourceEntity)
	if !ok {
		return dErrors.New(dErrors.CodeInternal, "granted entity snapshot is empty")
	}
	response, err := responseDocument(resp)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode plugin response")
	}
	input := jsondoc.CloneDocument(body)
	input[models.FieldAttestationResponse] = response

	output, err := s.functions.Execute(ctx, policy.CompletionValue, *def, input)
	if err == nil && output == nil {
		err = errors.New("function returned no document")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to execute completion function",
			"entity_type", resp.SourceEntity,
			"entity_id", resp.SourceUUID,
			"policy", policy.Name,
			"function", def.Name,
			"error", err,
		)
		return nil
	}
	delete(output, models.FieldAttestationResponse)

	updated := jsondoc.Wrap(resp.SourceEntity, output)
	if len(jsondoc.Diff(entity, updated)) == 0 {
		return nil
	}
	return s.persist(ctx, resp.SourceEntity, resp.SourceUUID, updated)
}

func responseDocument(resp models.PluginResponseMessage) (models.Document, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return jsondoc.Decode(b)
}
