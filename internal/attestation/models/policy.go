package models

import (
	"encoding/json"
	"strings"
)

// PolicyEntityType is the registry entity type under which dynamic policies are stored.
const PolicyEntityType = "AttestationPolicy"

// AttestationType decides whether claims are raised by the engine or by a user.
type AttestationType string

const (
	AttestationTypeManual    AttestationType = "MANUAL"
	AttestationTypeAutomated AttestationType = "AUTOMATED"
)

// CompletionType selects what runs after a grant.
type CompletionType string

const (
	CompletionAttestation CompletionType = "ATTESTATION"
	CompletionFunction    CompletionType = "FUNCTION"
)

// Policy describes which properties to attest, who adjudicates and what
// happens once the claim is granted.
type Policy struct {
	ID                     string            `json:"osid,omitempty"`
	Name                   string            `json:"name"`
	Entity                 string            `json:"entity,omitempty"`
	Type                   AttestationType   `json:"type,omitempty"`
	AttestationProperties  map[string]string `json:"attestationProperties,omitempty"`
	Conditions             string            `json:"conditions,omitempty"`
	AttestorPlugin         string            `json:"attestorPlugin,omitempty"`
	AttestorEntity         string            `json:"attestorEntity,omitempty"`
	AttestorSignin         json.RawMessage   `json:"attestorSignin,omitempty"`
	CredentialTemplate     json.RawMessage   `json:"credentialTemplate,omitempty"`
	OnComplete             string            `json:"onComplete,omitempty"`
	CompletionType         CompletionType    `json:"completionType,omitempty"`
	CompletionValue        string            `json:"completionValue,omitempty"`
	CompletionFunctionName string            `json:"completionFunctionName,omitempty"`
	CreatedBy              string            `json:"createdBy,omitempty"`
}

const internalPluginPrefix = "did:internal"

// IsInternal reports whether the attestor is handled inside the registry, in
// which case conditions are resolved before the claim is raised.
func (p *Policy) IsInternal() bool {
	return strings.HasPrefix(p.AttestorPlugin, internalPluginPrefix)
}

// IsAutomated reports whether the engine raises claims for this policy itself.
func (p *Policy) IsAutomated() bool {
	return p.Type == AttestationTypeAutomated
}

// HasCredentialTemplate reports whether a grant must produce a signed credential.
// An empty object counts as no template.
func (p *Policy) HasCredentialTemplate() bool {
	t := strings.TrimSpace(string(p.CredentialTemplate))
	return t != "" && t != "null" && t != "{}" && t != `""`
}

// HasCompletion reports whether a grant triggers a follow-up step.
func (p *Policy) HasCompletion() bool {
	return strings.TrimSpace(p.OnComplete) != ""
}

const (
	onCompleteAttestation = "attestation:"
	onCompleteFunction    = "function:"
	functionRefPrefix     = "#/functionDefinitions/"
)

// ResolveCompletion derives the completion fields from OnComplete when they
// are not set explicitly. OnComplete is either "attestation:<policy>" or
// "function:#/functionDefinitions/<name>(<args>)".
func (p *Policy) ResolveCompletion() {
	onComplete := strings.TrimSpace(p.OnComplete)
	if onComplete == "" || p.CompletionType != "" {
		return
	}
	switch {
	case strings.HasPrefix(onComplete, onCompleteAttestation):
		p.CompletionType = CompletionAttestation
		p.CompletionValue = strings.TrimPrefix(onComplete, onCompleteAttestation)
	case strings.HasPrefix(onComplete, onCompleteFunction):
		p.CompletionType = CompletionFunction
		p.CompletionValue = strings.TrimPrefix(onComplete, onCompleteFunction)
		if p.CompletionFunctionName == "" {
			p.CompletionFunctionName = FunctionName(p.CompletionValue)
		}
	}
}

// FunctionName extracts the definition name from a function call spec such as
// "#/functionDefinitions/concat($.a, $.b)".
func FunctionName(callSpec string) string {
	name := strings.TrimPrefix(strings.TrimSpace(callSpec), functionRefPrefix)
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
