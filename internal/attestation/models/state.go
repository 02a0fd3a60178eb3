package models

// State is the lifecycle state of a single attestation record.
type State string

const (
	StateDraft                State = "DRAFT"
	StateAttestationRequested State = "ATTESTATION_REQUESTED"
	StatePublished            State = "PUBLISHED"
	StateInvalid              State = "INVALID"
)

// AllStates lists the closed state set.
var AllStates = []State{StateDraft, StateAttestationRequested, StatePublished, StateInvalid}

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a member of the closed state set.
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StateAttestationRequested, StatePublished, StateInvalid:
		return true
	}
	return false
}

// IsCurrent reports whether a record in state s represents a live claim.
func (s State) IsCurrent() bool {
	return s == StateAttestationRequested || s == StatePublished
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == StateInvalid
}

// Action drives a state transition. Plugins send the first five; INVALIDATE
// is only produced by the engine itself.
type Action string

const (
	ActionRaiseClaim  Action = "RAISE_CLAIM"
	ActionGrantClaim  Action = "GRANT_CLAIM"
	ActionRejectClaim Action = "REJECT_CLAIM"
	ActionSelfAttest  Action = "SELF_ATTEST"
	ActionSetToDraft  Action = "SET_TO_DRAFT"
	ActionInvalidate  Action = "INVALIDATE"
)

// AllActions lists every action the transition function understands.
var AllActions = []Action{
	ActionRaiseClaim,
	ActionGrantClaim,
	ActionRejectClaim,
	ActionSelfAttest,
	ActionSetToDraft,
	ActionInvalidate,
}

func (a Action) String() string {
	return string(a)
}

// ParseAction converts a wire status into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	for _, known := range AllActions {
		if a == known {
			return a, nil
		}
	}
	return "", ErrUnknownAction
}
