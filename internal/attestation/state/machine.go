// Package state owns the claim lifecycle. It applies actions to attestation
// records held inline in an entity snapshot and never touches storage.
package state

import (
	"fmt"
	"strings"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
)

// Machine applies lifecycle actions to entity snapshots.
type Machine struct {
	uuidProperty string
}

// New creates a Machine. uuidProperty is the field holding record ids.
func New(uuidProperty string) *Machine {
	if uuidProperty == "" {
		uuidProperty = "osid"
	}
	return &Machine{uuidProperty: uuidProperty}
}

// UUIDProperty returns the record id field name.
func (m *Machine) UUIDProperty() string {
	return m.uuidProperty
}

// Result is the outcome of one transition. Entity is a fresh copy of the
// snapshot; Record and Superseded point into it.
type Result struct {
	Entity     models.Document
	Record     models.Record
	From       models.State
	To         models.State
	Created    bool
	Superseded []Superseded
}

// Superseded describes a record demoted because another record for the same
// property instance became current.
type Superseded struct {
	Record models.Record
	From   models.State
}

// ParsePropertyURI splits "<policyName>/<recordKey>".
func ParsePropertyURI(uri string) (policyName, key string, err error) {
	policyName, key, ok := strings.Cut(uri, "/")
	if !ok || policyName == "" || key == "" {
		return "", "", fmt.Errorf("%q: %w", uri, models.ErrInvalidPropertyURI)
	}
	return policyName, key, nil
}

// PropertyURI builds the address of a record.
func PropertyURI(policyName, key string) string {
	return policyName + "/" + key
}

// ManageState applies action to the record addressed by propertyURI inside
// root[entityType] and returns the updated copy. The record key matches either
// the record id or its claim id. RAISE_CLAIM and SELF_ATTEST create the record
// when it is missing. Metadata is merged into the record, with "claimId"
// stored as the claim id field; the state and record id fields are ignored.
func (m *Machine) ManageState(
	policy *models.Policy,
	root models.Document,
	entityType string,
	propertyURI string,
	action models.Action,
	metadata models.Document,
) (*Result, error) {
	policyName, key, err := ParsePropertyURI(propertyURI)
	if err != nil {
		return nil, err
	}
	if policy != nil && policy.Name != policyName {
		return nil, fmt.Errorf("%q does not address policy %q: %w", propertyURI, policy.Name, models.ErrInvalidPropertyURI)
	}

	entity := jsondoc.CloneDocument(root)
	body, ok := jsondoc.Body(entity, entityType)
	if !ok {
		return nil, fmt.Errorf("entity %s missing from snapshot: %w", entityType, models.ErrRecordNotFound)
	}

	records, _ := body[policyName].([]any)
	idx := m.find(records, key)

	record := models.Document{m.uuidProperty: key, models.FieldName: policyName}
	if idx >= 0 {
		record, ok = records[idx].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: record is not an object: %w", propertyURI, models.ErrRecordNotFound)
		}
	}

	from := models.State("")
	if idx >= 0 {
		from = models.NewRecord(record).State()
	}
	to, err := Next(from, action)
	if err != nil {
		return nil, err
	}

	for k, v := range metadata {
		switch k {
		case models.FieldState, m.uuidProperty:
			// Owned by the machine.
			continue
		case models.FieldClaimIDMeta:
			record[models.FieldClaimID] = jsondoc.Clone(v)
			continue
		}
		record[k] = jsondoc.Clone(v)
	}
	record[models.FieldState] = string(to)
	if idx < 0 {
		records = append([]any{record}, records...)
		idx = 0
	}

	res := &Result{
		Entity:  entity,
		Record:  models.NewRecord(record),
		From:    from,
		To:      to,
		Created: from == "",
	}
	if to.IsCurrent() {
		res.Superseded = supersede(records, idx)
	}

	body[policyName] = records
	mirrorStatus(body, policyName, records)
	return res, nil
}

// StateOf returns the state of the record addressed by propertyURI in
// root[entityType], or "" when there is no such record.
func (m *Machine) StateOf(root models.Document, entityType, propertyURI string) models.State {
	policyName, key, err := ParsePropertyURI(propertyURI)
	if err != nil {
		return ""
	}
	body, ok := jsondoc.Body(root, entityType)
	if !ok {
		return ""
	}
	records, _ := body[policyName].([]any)
	idx := m.find(records, key)
	if idx < 0 {
		return ""
	}
	obj, ok := records[idx].(map[string]any)
	if !ok {
		return ""
	}
	return models.NewRecord(obj).State()
}

func (m *Machine) find(records []any, key string) int {
	for i, item := range records {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		r := models.NewRecord(obj)
		if r.ID(m.uuidProperty) == key || (r.ClaimID() != "" && r.ClaimID() == key) {
			return i
		}
	}
	return -1
}

// supersede demotes every other live record covering the same property
// instance as records[current].
func supersede(records []any, current int) []Superseded {
	cur, _ := records[current].(map[string]any)
	curRecord := models.NewRecord(cur)

	var out []Superseded
	for i, item := range records {
		if i == current {
			continue
		}
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		r := models.NewRecord(obj)
		if !r.State().IsCurrent() || r.Name() != curRecord.Name() {
			continue
		}
		if !jsondoc.Equal(obj[models.FieldPropertiesUUID], cur[models.FieldPropertiesUUID]) {
			continue
		}
		from := r.State()
		obj[models.FieldState] = string(demoted(from))
		out = append(out, Superseded{Record: r, From: from})
	}
	return out
}

// MirrorStatus rewrites osAttestationStatus[policyName] from the first record
// of the policy array. It mutates body.
func MirrorStatus(body models.Document, policyName string) {
	records, _ := body[policyName].([]any)
	mirrorStatus(body, policyName, records)
}

func mirrorStatus(body models.Document, policyName string, records []any) {
	if len(records) == 0 {
		return
	}
	first, ok := records[0].(map[string]any)
	if !ok {
		return
	}
	status, ok := body[models.FieldAttestationStatus].(map[string]any)
	if !ok {
		status = map[string]any{}
		body[models.FieldAttestationStatus] = status
	}
	status[policyName] = string(models.NewRecord(first).State())
}
