package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, plugin transports and
// remote clients return these (optionally wrapped) so the workflow engine can
// translate them into domain errors.
//
// - ErrNotFound: entity or record does not exist in the registry
// - ErrConflict: a write collided with an existing entity
// - ErrInvalidState: a component was configured or used in a state it cannot serve
// - ErrUnavailable: collaborator temporarily unreachable, safe to retry
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
