package handler

import "claimflow/internal/attestation/models"

type StatusResponse struct {
	Status string `json:"status"`
}

type TriggerResponse struct {
	AttestationID string `json:"attestationOSID"`
}

type CredentialStatusResponse struct {
	Revoked bool `json:"revoked"`
}

type PolicyCreatedResponse struct {
	ID string `json:"osid"`
}

type PolicyListResponse struct {
	Policies []*models.Policy `json:"policies"`
	Total    int              `json:"total"`
}

// FromPolicies wraps policies in the list envelope, never returning a null list.
func FromPolicies(policies []*models.Policy) *PolicyListResponse {
	if policies == nil {
		policies = []*models.Policy{}
	}
	return &PolicyListResponse{Policies: policies, Total: len(policies)}
}
