package service

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/state"
	dErrors "claimflow/pkg/domain-errors"
	"claimflow/pkg/requestcontext"
)

const (
	requesterMatcher = "REQUESTER"
	fileSignLimit    = 4
)

// TriggerAttestation stores req as a new ATTESTATION_REQUESTED record on the
// entity and dispatches it to the policy's attestor. The returned record id
// identifies the claim in both directions.
func (s *Service) TriggerAttestation(ctx context.Context, req models.AttestationRequest, policy *models.Policy) (recordID string, err error) {
	ctx, span := s.startSpan(ctx, "TriggerAttestation")
	defer func() { endSpan(span, err) }()

	if policy == nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "attestation policy is required")
	}
	if req.EntityName == "" || req.EntityID == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "entity name and id are required")
	}
	if req.Name == "" {
		req.Name = policy.Name
	}
	span.SetAttributes(
		attribute.String("entity.type", req.EntityName),
		attribute.String("policy.name", policy.Name),
	)

	propertyData := ""
	if req.PropertyData != nil {
		if propertyData, err = jsondoc.String(req.PropertyData); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid property data")
		}
	}

	additionalInputs, err := s.signFileURLs(ctx, req.AdditionalInput)
	if err != nil {
		return "", err
	}

	condition := ""
	if policy.IsInternal() && s.conditions != nil && policy.Conditions != "" {
		body, _ := req.PropertyData.(map[string]any)
		if body == nil {
			body = models.Document{}
		}
		condition, err = s.conditions.Resolve(ctx, body, requesterMatcher, policy.Conditions)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to resolve policy conditions")
		}
	}

	root, err := s.read(ctx, req.EntityName, req.EntityID)
	if err != nil {
		return "", err
	}

	recordID = s.newID()
	res, err := s.machine.ManageState(policy, root, req.EntityName, state.PropertyURI(policy.Name, recordID),
		models.ActionRaiseClaim, s.requestRecord(req, propertyData))
	if err != nil {
		return "", transitionError(err)
	}
	if err := s.persist(ctx, req.EntityName, req.EntityID, res.Entity); err != nil {
		return "", err
	}
	s.settleSuperseded(ctx, policy, res, req.UserID)
	s.metrics.IncrementTransition(string(models.ActionRaiseClaim), string(res.To))

	msg := models.PluginRequestMessage{
		PolicyName:       policy.Name,
		PropertyData:     propertyData,
		Condition:        condition,
		AttestationUUID:  recordID,
		SourceEntity:     req.EntityName,
		SourceUUID:       req.EntityID,
		AdditionalInputs: additionalInputs,
		Status:           models.ActionRaiseClaim,
		AttestorPlugin:   policy.AttestorPlugin,
		AttestorEntity:   policy.AttestorEntity,
		AttestorSignin:   policy.AttestorSignin,
		PropertiesUUID:   req.PropertiesUUID,
		UserID:           req.UserID,
		EmailID:          req.EmailID,
		Date:             requestcontext.Now(ctx),
	}
	if err := s.route(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to dispatch attestation request",
			"entity_type", req.EntityName,
			"entity_id", req.EntityID,
			"policy", policy.Name,
			"record_id", recordID,
			"error", err,
		)
		return "", err
	}
	return recordID, nil
}

// requestRecord is the metadata merged into a freshly raised record.
func (s *Service) requestRecord(req models.AttestationRequest, propertyData string) models.Document {
	record := models.Document{
		models.FieldName:         req.Name,
		models.FieldEntityName:   req.EntityName,
		models.FieldEntityID:     req.EntityID,
		models.FieldPropertyData: propertyData,
	}
	if len(req.PropertiesUUID) > 0 {
		refs := make(map[string]any, len(req.PropertiesUUID))
		for k, ids := range req.PropertiesUUID {
			refs[k] = lo.ToAnySlice(ids)
		}
		record[models.FieldPropertiesUUID] = refs
	}
	if len(req.AdditionalInput) > 0 {
		record["additionalInput"] = jsondoc.CloneDocument(req.AdditionalInput)
	}
	if req.UserID != "" {
		record["userId"] = req.UserID
	}
	if req.EmailID != "" {
		record["emailId"] = req.EmailID
	}
	return record
}

// signFileURLs replaces stored file references in the additional input with
// time-boxed download URLs. A URL that cannot be signed is dropped.
func (s *Service) signFileURLs(ctx context.Context, input models.Document) (models.Document, error) {
	raw, ok := input[models.FieldFileURL]
	if !ok {
		return input, nil
	}
	if !s.cfg.FileStorageEnabled || s.files == nil {
		return nil, notEnabled("file storage")
	}

	paths, _ := raw.([]any)
	signed := make([]string, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(fileSignLimit)
	for i, p := range paths {
		path, ok := p.(string)
		if !ok || path == "" {
			continue
		}
		g.Go(func() error {
			url, err := s.files.SignedURL(ctx, path)
			if err != nil {
				s.metrics.IncrementFileFailure("sign_url")
				s.logger.ErrorContext(ctx, "failed to sign file url",
					"path", path,
					"error", err,
				)
				return nil
			}
			signed[i] = url
			return nil
		})
	}
	_ = g.Wait()

	out := jsondoc.CloneDocument(input)
	out[models.FieldFileURL] = lo.ToAnySlice(lo.Compact(signed))
	return out, nil
}

// AutoRaiseClaim raises claims for AUTOMATED policies of entityType when the
// entity is new or the attested properties changed. existing and updated are
// root snapshots; existing is nil for a newly created entity.
func (s *Service) AutoRaiseClaim(ctx context.Context, entityType, entityID, userID string, existing, updated models.Document, emailID string) (err error) {
	if !s.cfg.Enabled {
		return nil
	}
	ctx, span := s.startSpan(ctx, "AutoRaiseClaim")
	defer func() { endSpan(span, err) }()

	newBody, ok := jsondoc.Body(updated, entityType)
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, "updated snapshot does not contain the entity")
	}
	var oldBody models.Document
	if existing != nil {
		oldBody, _ = jsondoc.Body(existing, entityType)
	}

	var errs []error
	for _, policy := range s.policies.Resolve(ctx, entityType) {
		if !policy.IsAutomated() {
			continue
		}
		if oldBody != nil && !s.attestedPropertiesChanged(policy, oldBody, newBody) {
			continue
		}
		data, err := jsondoc.ExtractPropertyData(s.uuidProperty(), newBody, policy.AttestationProperties, nil)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to extract attestation properties",
				"entity_type", entityType,
				"entity_id", entityID,
				"policy", policy.Name,
				"error", err,
			)
			errs = append(errs, dErrors.Wrap(err, dErrors.CodeValidation, "failed to extract attestation properties"))
			continue
		}
		_, err = s.TriggerAttestation(ctx, models.AttestationRequest{
			EntityName:   entityType,
			EntityID:     entityID,
			Name:         policy.Name,
			PropertyData: data,
			UserID:       userID,
			EmailID:      emailID,
		}, policy)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// attestedPropertiesChanged compares the extracted attestation properties of
// two entity bodies structurally.
func (s *Service) attestedPropertiesChanged(policy *models.Policy, oldBody, newBody models.Document) bool {
	before, err := jsondoc.ExtractPropertyData(s.uuidProperty(), oldBody, policy.AttestationProperties, nil)
	if err != nil {
		return true
	}
	after, err := jsondoc.ExtractPropertyData(s.uuidProperty(), newBody, policy.AttestationProperties, nil)
	if err != nil {
		return true
	}
	return !jsondoc.Equal(before, after)
}
