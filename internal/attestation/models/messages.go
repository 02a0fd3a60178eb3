package models

import (
	"encoding/json"
	"time"
)

// ClaimPluginActor is the internal actor that tracks claims for attestors.
const ClaimPluginActor = "did:internal:ClaimPluginActor"

// ClaimClosedNote is attached to claims closed because the entity changed.
const ClaimClosedNote = "Closed due to entity update"

// PluginRequestMessage is sent to an attestor plugin.
type PluginRequestMessage struct {
	PolicyName       string              `json:"policyName"`
	PropertyData     string              `json:"propertyData,omitempty"`
	Condition        string              `json:"conditions,omitempty"`
	AttestationUUID  string              `json:"attestationOSID,omitempty"`
	SourceEntity     string              `json:"sourceEntity,omitempty"`
	SourceUUID       string              `json:"sourceOSID,omitempty"`
	AdditionalInputs Document            `json:"additionalInputs,omitempty"`
	Status           Action              `json:"status"`
	AttestorPlugin   string              `json:"attestorPlugin"`
	AttestorEntity   string              `json:"attestorEntity,omitempty"`
	AttestorSignin   json.RawMessage     `json:"attestorSignin,omitempty"`
	PropertiesUUID   map[string][]string `json:"propertiesOSID,omitempty"`
	UserID           string              `json:"userId,omitempty"`
	EmailID          string              `json:"emailId,omitempty"`
	Date             time.Time           `json:"date"`
}

// RoutingKey addresses the actor that handles the message.
func (m PluginRequestMessage) RoutingKey() string {
	return m.AttestorPlugin
}

// PluginFile is a document attached to a plugin response.
type PluginFile struct {
	FileName string `json:"fileName"`
	File     []byte `json:"file"`
}

// PluginResponseMessage is an attestor's asynchronous verdict.
type PluginResponseMessage struct {
	PolicyName      string              `json:"policyName"`
	SourceEntity    string              `json:"sourceEntity"`
	SourceUUID      string              `json:"sourceOSID"`
	AttestationUUID string              `json:"attestationOSID"`
	AttestorPlugin  string              `json:"attestorPlugin,omitempty"`
	Status          Action              `json:"status"`
	Response        string              `json:"response,omitempty"`
	AdditionalData  Document            `json:"additionalData,omitempty"`
	Files           []PluginFile        `json:"files,omitempty"`
	PropertiesUUIDs map[string][]string `json:"propertiesOSID,omitempty"`
	UserID          string              `json:"userId,omitempty"`
	EmailID         string              `json:"emailId,omitempty"`
	Date            time.Time           `json:"date"`
}

// RoutingKey addresses the actor that produced the response.
func (m PluginResponseMessage) RoutingKey() string {
	return m.AttestorPlugin
}

// ClaimID returns the attestor's claim id carried in the additional data.
func (m PluginResponseMessage) ClaimID() string {
	if m.AdditionalData == nil {
		return ""
	}
	if v, ok := m.AdditionalData[FieldClaimIDMeta].(string); ok {
		return v
	}
	return ""
}
