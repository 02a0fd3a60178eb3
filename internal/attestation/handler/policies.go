package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "claimflow/pkg/domain-errors"
	"claimflow/pkg/platform/httputil"
	"claimflow/pkg/requestcontext"
)

// HandleListPolicies handles GET /policies. With ?entity= it lists every
// policy of that entity type, otherwise the caller's dynamic policies.
func (h *Handler) HandleListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if entity := r.URL.Query().Get("entity"); entity != "" {
		httputil.WriteJSON(w, http.StatusOK, FromPolicies(h.policies.Resolve(ctx, entity)))
		return
	}

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "acting user required"))
		return
	}
	policies, err := h.policies.FindPoliciesByCreator(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPolicies(policies))
}

// HandleCreatePolicy handles POST /policies.
func (h *Handler) HandleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p := req.toPolicy()
	id, err := h.policies.CreatePolicy(ctx, requestcontext.UserID(ctx), p)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create policy",
			"request_id", requestID,
			"policy", p.Name,
			"entity_type", p.Entity,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &PolicyCreatedResponse{ID: id})
}

// HandleGetPolicy handles GET /policies/{policyId}.
func (h *Handler) HandleGetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.policies.FindPolicyByID(r.Context(), chi.URLParam(r, "policyId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleUpdatePolicy handles PUT /policies/{policyId}.
func (h *Handler) HandleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "policyId")

	req, ok := httputil.DecodeAndPrepare[PolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.policies.UpdatePolicy(ctx, id, req.toPolicy()); err != nil {
		h.logger.ErrorContext(ctx, "failed to update policy",
			"request_id", requestID,
			"policy_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeletePolicy handles DELETE /policies/{policyId}.
func (h *Handler) HandleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.policies.DeletePolicy(r.Context(), chi.URLParam(r, "policyId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
