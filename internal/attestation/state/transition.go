package state

import (
	"fmt"

	"claimflow/internal/attestation/models"
)

// Next returns the state a record moves to when action is applied in state
// from. An empty from means the record does not exist yet.
func Next(from models.State, action models.Action) (models.State, error) {
	if from != "" && !from.IsValid() {
		return "", fmt.Errorf("record in unknown state %q: %w", from, models.ErrInvalidTransition)
	}
	if from.IsTerminal() && action != models.ActionInvalidate {
		return "", fmt.Errorf("%s from %s: %w", action, from, models.ErrInvalidTransition)
	}

	switch action {
	case models.ActionRaiseClaim:
		switch from {
		case "", models.StateDraft, models.StateAttestationRequested:
			return models.StateAttestationRequested, nil
		}
	case models.ActionGrantClaim:
		switch from {
		case models.StateAttestationRequested, models.StatePublished:
			return models.StatePublished, nil
		}
	case models.ActionSelfAttest:
		switch from {
		case "", models.StateDraft, models.StateAttestationRequested, models.StatePublished:
			return models.StatePublished, nil
		}
	case models.ActionRejectClaim, models.ActionSetToDraft:
		switch from {
		case models.StateAttestationRequested, models.StateDraft:
			return models.StateDraft, nil
		}
	case models.ActionInvalidate:
		switch from {
		case models.StatePublished, models.StateInvalid:
			return models.StateInvalid, nil
		}
	default:
		return "", fmt.Errorf("%q: %w", action, models.ErrUnknownAction)
	}
	if from == "" {
		return "", fmt.Errorf("%s on missing record: %w", action, models.ErrRecordNotFound)
	}
	return "", fmt.Errorf("%s from %s: %w", action, from, models.ErrInvalidTransition)
}

// demoted is the state a live record falls back to when a newer record for
// the same property instance becomes current.
func demoted(s models.State) models.State {
	if s == models.StatePublished {
		return models.StateInvalid
	}
	return models.StateDraft
}
