package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/state"
	dErrors "claimflow/pkg/domain-errors"
)

const fileUploadLimit = 4

// UpdateState folds an attestor's verdict into the source entity, persists
// the entity and then runs the policy's completion step on a grant. The
// transition is checked before any signing or upload, and a grant on a
// record that is already PUBLISHED is a no-op.
func (s *Service) UpdateState(ctx context.Context, resp models.PluginResponseMessage) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateState")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("entity.type", resp.SourceEntity),
		attribute.String("policy.name", resp.PolicyName),
		attribute.String("action", string(resp.Status)),
	)

	action, err := models.ParseAction(string(resp.Status))
	if err != nil || action == models.ActionInvalidate {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unsupported plugin action %q", resp.Status))
	}
	key := resp.AttestationUUID
	if key == "" {
		key = resp.ClaimID()
	}
	if resp.SourceEntity == "" || resp.SourceUUID == "" || key == "" {
		return dErrors.New(dErrors.CodeBadRequest, "source entity, source id and attestation id are required")
	}

	policy, err := s.policies.ResolvePolicy(ctx, resp.SourceEntity, resp.PolicyName)
	if err != nil {
		return policyError(err)
	}

	root, err := s.read(ctx, resp.SourceEntity, resp.SourceUUID)
	if err != nil {
		return err
	}

	// A replayed grant must not sign, upload or complete again.
	uri := state.PropertyURI(policy.Name, key)
	from := s.machine.StateOf(root, resp.SourceEntity, uri)
	if action == models.ActionGrantClaim && from == models.StatePublished {
		s.logger.InfoContext(ctx, "grant already applied",
			"entity_type", resp.SourceEntity,
			"entity_id", resp.SourceUUID,
			"policy", policy.Name,
			"record_key", key,
		)
		return nil
	}
	if _, err := state.Next(from, action); err != nil {
		return transitionError(err)
	}

	metadata, err := s.responseMetadata(ctx, policy, action, resp)
	if err != nil {
		return err
	}
	if len(resp.Files) > 0 {
		if err := s.attachFiles(ctx, resp, metadata); err != nil {
			return err
		}
	}

	res, err := s.machine.ManageState(policy, root, resp.SourceEntity, uri, action, metadata)
	if err != nil {
		return transitionError(err)
	}
	if err := s.persist(ctx, resp.SourceEntity, resp.SourceUUID, res.Entity); err != nil {
		return err
	}
	s.settleSuperseded(ctx, policy, res, resp.UserID)
	s.metrics.IncrementTransition(string(action), string(res.To))

	if action == models.ActionGrantClaim && policy.HasCompletion() {
		return s.complete(ctx, resp, policy, res.Entity)
	}
	return nil
}

// responseMetadata builds the fields merged into the addressed record. A
// grant on a policy with a credential template signs the attestor's response;
// a failed signature aborts the grant.
func (s *Service) responseMetadata(ctx context.Context, policy *models.Policy, action models.Action, resp models.PluginResponseMessage) (models.Document, error) {
	metadata := models.Document{}
	switch action {
	case models.ActionGrantClaim:
		if !policy.HasCredentialTemplate() {
			metadata[models.FieldAttestedDataMeta] = resp.Response
			break
		}
		if !s.cfg.SignatureEnabled || s.signer == nil {
			return nil, notEnabled("signature service")
		}
		title := fmt.Sprintf("%s_%s", resp.SourceEntity, resp.PolicyName)
		credential, err := s.sign(ctx, title, jsondoc.ParseLoose(resp.Response), policy.CredentialTemplate)
		if err != nil {
			return nil, err
		}
		value := credential.Value(s.cfg.SignatureProvider)
		metadata[models.FieldAttestedDataMeta] = value
		metadata[s.cfg.SignatureProvider.CredentialField()] = value
	case models.ActionSelfAttest, models.ActionRejectClaim:
		metadata[models.FieldAttestedDataMeta] = resp.Response
	case models.ActionRaiseClaim:
		metadata[models.FieldClaimIDMeta] = resp.ClaimID()
	case models.ActionSetToDraft:
	}
	return metadata, nil
}

// attachFiles stores the documents attached to a response and lists their
// paths under "files" in the attested data. A file that fails to upload is
// logged and left out.
func (s *Service) attachFiles(ctx context.Context, resp models.PluginResponseMessage, metadata models.Document) error {
	if !s.cfg.FileStorageEnabled || s.files == nil {
		return notEnabled("file storage")
	}

	stored := make([]bool, len(resp.Files))
	paths := make([]string, len(resp.Files))
	g := new(errgroup.Group)
	g.SetLimit(fileUploadLimit)
	for i, f := range resp.Files {
		paths[i] = DocumentPath(resp.SourceEntity, resp.SourceUUID, resp.PolicyName, f.FileName)
		g.Go(func() error {
			if err := s.files.Save(ctx, bytes.NewReader(f.File), paths[i]); err != nil {
				s.metrics.IncrementFileFailure("save")
				s.logger.ErrorContext(ctx, "failed to persist attested file",
					"entity_type", resp.SourceEntity,
					"entity_id", resp.SourceUUID,
					"policy", resp.PolicyName,
					"path", paths[i],
					"error", err,
				)
				return nil
			}
			stored[i] = true
			return nil
		})
	}
	_ = g.Wait()

	saved := make([]any, 0, len(paths))
	for i, p := range paths {
		if stored[i] {
			saved = append(saved, p)
		}
	}

	attested, _ := metadata[models.FieldAttestedDataMeta].(string)
	withFiles, err := appendFiles(attested, saved)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attested files")
	}
	metadata[models.FieldAttestedDataMeta] = withFiles
	return nil
}

// DocumentPath is where an attested file is stored.
func DocumentPath(entityType, entityID, policyName, fileName string) string {
	return fmt.Sprintf("%s/%s/%s/documents/%s", entityType, entityID, policyName, fileName)
}

// appendFiles adds the stored paths to attested data kept as a JSON string.
// Non-object attested data is kept under "value".
func appendFiles(attested string, paths []any) (string, error) {
	obj, ok := jsondoc.ParseLoose(attested).(map[string]any)
	if !ok {
		obj = map[string]any{}
		if attested != "" {
			obj["value"] = jsondoc.ParseLoose(attested)
		}
	}
	obj[models.FieldFiles] = paths
	return jsondoc.String(obj)
}

func (s *Service) sign(ctx context.Context, title string, data any, template json.RawMessage) (*models.SignedCredential, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid credential data")
	}
	start := time.Now()
	credential, err := s.signer.Sign(ctx, models.SignRequest{
		Title:              title,
		Data:               payload,
		CredentialTemplate: template,
	})
	s.metrics.ObserveSigningLatency(time.Since(start))
	if err != nil {
		return nil, dErrors.Wrap(fmt.Errorf("%w: %w", models.ErrSigningFailed, err), dErrors.CodeInternal, "failed to sign credential")
	}
	return credential, nil
}
