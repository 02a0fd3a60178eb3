package models

// AttestationRequest asks for one claim on one entity. PropertyData is the
// decoded snapshot the attestor judges; it is usually an object but may be
// any JSON value when it was carried forward from a previous grant.
type AttestationRequest struct {
	EntityName      string
	EntityID        string
	Name            string
	PropertyData    any
	PropertiesUUID  map[string][]string
	AdditionalInput Document
	UserID          string
	EmailID         string
}
