package models

import (
	"crypto/md5" //nolint:gosec // fingerprint format shared with existing revocation ledgers
	"encoding/hex"
	"encoding/json"
	"strings"
)

// RevokedCredentialEntityType is the registry entity type of revocation records.
const RevokedCredentialEntityType = "RevokedCredential"

// SignatureProvider selects how a signed credential is stored on a record.
type SignatureProvider string

const (
	// SignatureProviderV1 stores the whole signed document.
	SignatureProviderV1 SignatureProvider = "v1"
	// SignatureProviderV2 stores only the credential id issued by the signer.
	SignatureProviderV2 SignatureProvider = "v2"
)

// CredentialField is the record field that holds the credential.
func (p SignatureProvider) CredentialField() string {
	if p == SignatureProviderV2 {
		return FieldCredentialID
	}
	return FieldAttestedData
}

// EntityCredentialField is the entity field that holds a credential issued
// for the whole entity.
func (p SignatureProvider) EntityCredentialField() string {
	if p == SignatureProviderV2 {
		return FieldCredentialID
	}
	return FieldSignedData
}

// SignRequest is sent to the signing collaborator.
type SignRequest struct {
	Title              string          `json:"title"`
	Data               json.RawMessage `json:"data"`
	CredentialTemplate json.RawMessage `json:"credentialTemplate"`
}

// SignedCredential is the signer's answer. ID is populated by v2 signers.
type SignedCredential struct {
	ID  string
	Raw json.RawMessage
}

// Value returns what the record stores for the given provider.
func (c SignedCredential) Value(provider SignatureProvider) string {
	if provider == SignatureProviderV2 && c.ID != "" {
		return c.ID
	}
	return string(c.Raw)
}

// RevokedCredential is an immutable revocation fact.
type RevokedCredential struct {
	Entity     string `json:"entity"`
	EntityID   string `json:"entityId"`
	SignedData string `json:"signedData"`
	SignedHash string `json:"signedHash"`
	UserID     string `json:"userId"`
}

// NewRevokedCredential builds a revocation record with its fingerprint.
func NewRevokedCredential(entity, entityID, signedData, userID string) RevokedCredential {
	return RevokedCredential{
		Entity:     entity,
		EntityID:   entityID,
		SignedData: signedData,
		SignedHash: SignedHash(signedData),
		UserID:     userID,
	}
}

// SignedHash fingerprints signed data by content.
func SignedHash(signedData string) string {
	sum := md5.Sum([]byte(signedData)) //nolint:gosec
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
