package models

// Field names of attestation records and of the status map kept on the entity.
const (
	FieldState               = "_osState"
	FieldClaimID             = "_osClaimId"
	FieldAttestedData        = "_osAttestedData"
	FieldCredentialID        = "_osCredentialId"
	FieldSignedData          = "_osSignedData"
	FieldAttestationStatus   = "osAttestationStatus"
	FieldOwner               = "osOwner"
	FieldName                = "name"
	FieldPropertyData        = "propertyData"
	FieldPropertiesUUID      = "propertiesUUID"
	FieldEntityName          = "entityName"
	FieldEntityID            = "entityId"
	FieldAttestedDataMeta    = "attestedData"
	FieldClaimIDMeta         = "claimId"
	FieldAttestationResponse = "attestationResponse"
	FieldFileURL             = "fileUrl"
	FieldFiles               = "files"
)

// Document is a decoded JSON object. Entity snapshots are documents of the
// form {"<EntityType>": {...}}.
type Document = map[string]any

// Record is a typed view over one element of a policy's attestation array.
type Record struct {
	raw Document
}

// NewRecord wraps a raw attestation element.
func NewRecord(raw Document) Record {
	return Record{raw: raw}
}

// Raw returns the underlying document.
func (r Record) Raw() Document {
	return r.raw
}

func (r Record) str(key string) string {
	if v, ok := r.raw[key].(string); ok {
		return v
	}
	return ""
}

// ID returns the record identifier under the given uuid property name.
func (r Record) ID(uuidProperty string) string {
	return r.str(uuidProperty)
}

func (r Record) State() State {
	return State(r.str(FieldState))
}

func (r Record) ClaimID() string {
	return r.str(FieldClaimID)
}

func (r Record) Name() string {
	return r.str(FieldName)
}

func (r Record) EntityName() string {
	return r.str(FieldEntityName)
}

func (r Record) EntityID() string {
	return r.str(FieldEntityID)
}

// PropertyData returns the stored snapshot, which is kept as a JSON string.
func (r Record) PropertyData() string {
	return r.str(FieldPropertyData)
}

// Credential returns the provider-specific credential value, if any.
func (r Record) Credential(provider SignatureProvider) string {
	return r.str(provider.CredentialField())
}
