// Package handler exposes the workflow engine over HTTP: attestor plugin
// callbacks, claim triggers, invalidation, credential operations and dynamic
// policy administration.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"claimflow/internal/attestation/models"
	dErrors "claimflow/pkg/domain-errors"
	"claimflow/pkg/platform/httputil"
	"claimflow/pkg/requestcontext"
)

// Service is the workflow engine surface used by the handlers.
type Service interface {
	UpdateState(ctx context.Context, resp models.PluginResponseMessage) error
	TriggerAttestation(ctx context.Context, req models.AttestationRequest, policy *models.Policy) (string, error)
	InvalidateAttestationAsync(ctx context.Context, entityType, entityID, userID, editedProperty string)
	AutoRaiseClaim(ctx context.Context, entityType, entityID, userID string, existing, updated models.Document, emailID string) error
	InvalidateClaim(ctx context.Context, attestorEntity, userID, claimID string) error
	SignEntity(ctx context.Context, entityType, entityID string) error
	RevokeExistingCredentials(ctx context.Context, entity, entityID, userID, signedData string) error
	CheckIfCredentialIsRevoked(ctx context.Context, signedData string) (bool, error)
}

// Policies resolves and administers attestation policies.
type Policies interface {
	Resolve(ctx context.Context, entityType string) []*models.Policy
	ResolvePolicy(ctx context.Context, entityType, name string) (*models.Policy, error)
	CreatePolicy(ctx context.Context, userID string, p *models.Policy) (string, error)
	UpdatePolicy(ctx context.Context, id string, p *models.Policy) error
	FindPolicyByID(ctx context.Context, id string) (*models.Policy, error)
	DeletePolicy(ctx context.Context, id string) error
	FindPoliciesByCreator(ctx context.Context, userID string) ([]*models.Policy, error)
}

// Handler wires attestation endpoints to the engine.
type Handler struct {
	service  Service
	policies Policies
	logger   *slog.Logger
}

func New(service Service, policies Policies, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		policies: policies,
		logger:   logger,
	}
}

// Register mounts the endpoints on r. Callers apply authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/plugins/responses", h.HandlePluginResponse)

	r.Route("/entities/{entity}/{id}", func(r chi.Router) {
		r.Post("/attestations/{policy}", h.HandleTriggerAttestation)
		r.Post("/invalidate", h.HandleInvalidate)
		r.Post("/changes", h.HandleEntityChanged)
		r.Post("/sign", h.HandleSignEntity)
	})
	r.Post("/claims/{claimId}/invalidate", h.HandleInvalidateClaim)

	r.Post("/credentials/revoke", h.HandleRevokeCredential)
	r.Post("/credentials/status", h.HandleCredentialStatus)

	r.Route("/policies", func(r chi.Router) {
		r.Get("/", h.HandleListPolicies)
		r.Post("/", h.HandleCreatePolicy)
		r.Get("/{policyId}", h.HandleGetPolicy)
		r.Put("/{policyId}", h.HandleUpdatePolicy)
		r.Delete("/{policyId}", h.HandleDeletePolicy)
	})
}

// HandlePluginResponse handles POST /plugins/responses.
func (h *Handler) HandlePluginResponse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PluginResponseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	resp := req.toMessage(requestcontext.Plugin(ctx), requestcontext.UserID(ctx), requestcontext.Now(ctx))

	if err := h.service.UpdateState(ctx, resp); err != nil {
		h.logger.ErrorContext(ctx, "failed to apply plugin response",
			"request_id", requestID,
			"attestor_plugin", resp.AttestorPlugin,
			"entity_type", resp.SourceEntity,
			"entity_id", resp.SourceUUID,
			"policy", resp.PolicyName,
			"status", resp.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &StatusResponse{Status: "applied"})
}

// HandleTriggerAttestation handles POST /entities/{entity}/{id}/attestations/{policy}.
func (h *Handler) HandleTriggerAttestation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	entity, id, policyName := chi.URLParam(r, "entity"), chi.URLParam(r, "id"), chi.URLParam(r, "policy")

	req, ok := httputil.DecodeAndPrepare[TriggerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	policy, err := h.policies.ResolvePolicy(ctx, entity, policyName)
	if err != nil {
		httputil.WriteError(w, policyError(err))
		return
	}

	recordID, err := h.service.TriggerAttestation(ctx, models.AttestationRequest{
		EntityName:      entity,
		EntityID:        id,
		Name:            policy.Name,
		PropertyData:    req.PropertyData,
		PropertiesUUID:  req.PropertiesUUID,
		AdditionalInput: req.AdditionalInput,
		UserID:          requestcontext.UserID(ctx),
		EmailID:         req.EmailID,
	}, policy)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to trigger attestation",
			"request_id", requestID,
			"entity_type", entity,
			"entity_id", id,
			"policy", policyName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &TriggerResponse{AttestationID: recordID})
}

// HandleInvalidate handles POST /entities/{entity}/{id}/invalidate. The pass
// runs in the background.
func (h *Handler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[InvalidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.service.InvalidateAttestationAsync(requestcontext.Detach(ctx), entity, id, requestcontext.UserID(ctx), req.EditedProperty)
	httputil.WriteJSON(w, http.StatusAccepted, &StatusResponse{Status: "accepted"})
}

// HandleEntityChanged handles POST /entities/{entity}/{id}/changes, sent by
// the registry after an entity write. Automated policies whose attested
// properties changed get a new claim.
func (h *Handler) HandleEntityChanged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[EntityChangedRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	err := h.service.AutoRaiseClaim(ctx, entity, id, requestcontext.UserID(ctx), req.Existing, req.Updated, req.EmailID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to auto raise claims",
			"request_id", requestID,
			"entity_type", entity,
			"entity_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &StatusResponse{Status: "processed"})
}

// HandleSignEntity handles POST /entities/{entity}/{id}/sign.
func (h *Handler) HandleSignEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")

	if err := h.service.SignEntity(ctx, entity, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to sign entity",
			"request_id", requestcontext.RequestID(ctx),
			"entity_type", entity,
			"entity_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &StatusResponse{Status: "signed"})
}

// HandleInvalidateClaim handles POST /claims/{claimId}/invalidate.
func (h *Handler) HandleInvalidateClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	claimID := chi.URLParam(r, "claimId")

	req, ok := httputil.DecodeAndPrepare[InvalidateClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.InvalidateClaim(ctx, req.AttestorEntity, requestcontext.UserID(ctx), claimID); err != nil {
		h.logger.ErrorContext(ctx, "failed to invalidate claim",
			"request_id", requestID,
			"claim_id", claimID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, &StatusResponse{Status: "accepted"})
}

// HandleRevokeCredential handles POST /credentials/revoke.
func (h *Handler) HandleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.RevokeExistingCredentials(ctx, req.Entity, req.EntityID, requestcontext.UserID(ctx), req.SignedData); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke credential",
			"request_id", requestID,
			"entity_type", req.Entity,
			"entity_id", req.EntityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCredentialStatus handles POST /credentials/status.
func (h *Handler) HandleCredentialStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CredentialStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	revoked, err := h.service.CheckIfCredentialIsRevoked(ctx, req.SignedData)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &CredentialStatusResponse{Revoked: revoked})
}

func policyError(err error) error {
	if errors.Is(err, models.ErrPolicyNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "attestation policy not found")
	}
	return err
}
