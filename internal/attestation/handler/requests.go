package handler

import (
	"strings"
	"time"

	"claimflow/internal/attestation/models"
	dErrors "claimflow/pkg/domain-errors"
)

// PluginResponseRequest is the body of POST /plugins/responses.
type PluginResponseRequest struct {
	models.PluginResponseMessage
}

// Validate implements httputil.Validatable.
func (r *PluginResponseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PolicyName = strings.TrimSpace(r.PolicyName)
	r.SourceEntity = strings.TrimSpace(r.SourceEntity)
	r.SourceUUID = strings.TrimSpace(r.SourceUUID)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	if _, err := models.ParseAction(string(r.Status)); err != nil {
		return dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	if r.PolicyName == "" || r.SourceEntity == "" || r.SourceUUID == "" {
		return dErrors.New(dErrors.CodeValidation, "policyName, sourceEntity and sourceOSID are required")
	}
	if r.AttestationUUID == "" && r.ClaimID() == "" {
		return dErrors.New(dErrors.CodeValidation, "attestationOSID or additionalData.claimId is required")
	}
	return nil
}

// toMessage binds the response to the authenticated caller. The token's
// plugin wins over the body; the body's user and date are kept when given.
func (r *PluginResponseRequest) toMessage(plugin, userID string, now time.Time) models.PluginResponseMessage {
	msg := r.PluginResponseMessage
	if plugin != "" {
		msg.AttestorPlugin = plugin
	}
	if msg.UserID == "" {
		msg.UserID = userID
	}
	if msg.Date.IsZero() {
		msg.Date = now
	}
	return msg
}

// TriggerRequest is the body of POST /entities/{entity}/{id}/attestations/{policy}.
type TriggerRequest struct {
	PropertyData    any                 `json:"propertyData"`
	PropertiesUUID  map[string][]string `json:"propertiesOSID"`
	AdditionalInput models.Document     `json:"additionalInput"`
	EmailID         string              `json:"emailId"`
}

func (r *TriggerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.EmailID = strings.TrimSpace(r.EmailID)
	return nil
}

// InvalidateRequest is the body of POST /entities/{entity}/{id}/invalidate.
type InvalidateRequest struct {
	EditedProperty string `json:"editedProperty"`
}

func (r *InvalidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.EditedProperty = strings.TrimSpace(r.EditedProperty)
	return nil
}

// EntityChangedRequest is the body of POST /entities/{entity}/{id}/changes.
// Existing is absent for a newly created entity.
type EntityChangedRequest struct {
	Existing models.Document `json:"existing,omitempty"`
	Updated  models.Document `json:"updated"`
	EmailID  string          `json:"emailId,omitempty"`
}

func (r *EntityChangedRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Updated == nil {
		return dErrors.New(dErrors.CodeValidation, "updated is required")
	}
	r.EmailID = strings.TrimSpace(r.EmailID)
	return nil
}

// InvalidateClaimRequest is the body of POST /claims/{claimId}/invalidate.
type InvalidateClaimRequest struct {
	AttestorEntity string `json:"attestorEntity"`
}

func (r *InvalidateClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.AttestorEntity = strings.TrimSpace(r.AttestorEntity)
	return nil
}

// RevokeRequest is the body of POST /credentials/revoke.
type RevokeRequest struct {
	Entity     string `json:"entity"`
	EntityID   string `json:"entityId"`
	SignedData string `json:"signedData"`
}

func (r *RevokeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Entity) == "" || strings.TrimSpace(r.EntityID) == "" {
		return dErrors.New(dErrors.CodeValidation, "entity and entityId are required")
	}
	if r.SignedData == "" {
		return dErrors.New(dErrors.CodeValidation, "signedData is required")
	}
	return nil
}

// CredentialStatusRequest is the body of POST /credentials/status.
type CredentialStatusRequest struct {
	SignedData string `json:"signedData"`
}

func (r *CredentialStatusRequest) Validate() error {
	if r == nil || r.SignedData == "" {
		return dErrors.New(dErrors.CodeValidation, "signedData is required")
	}
	return nil
}

// PolicyRequest is the body of policy create and update.
type PolicyRequest struct {
	models.Policy
}

func (r *PolicyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Entity = strings.TrimSpace(r.Entity)
	if r.Name == "" || r.Entity == "" {
		return dErrors.New(dErrors.CodeValidation, "name and entity are required")
	}
	switch r.Type {
	case "", models.AttestationTypeManual, models.AttestationTypeAutomated:
	default:
		return dErrors.New(dErrors.CodeValidation, "type must be MANUAL or AUTOMATED")
	}
	if r.AttestorPlugin == "" {
		return dErrors.New(dErrors.CodeValidation, "attestorPlugin is required")
	}
	return nil
}

func (r *PolicyRequest) toPolicy() *models.Policy {
	p := r.Policy
	p.ID = ""
	p.CreatedBy = ""
	p.ResolveCompletion()
	return &p
}
