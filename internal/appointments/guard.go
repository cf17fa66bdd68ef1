package appointments

// Role identifies the actor requesting a status change.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Terminal reports whether no transition is defined out of s.
func Terminal(s Status) bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition checks the lifecycle state machine:
//
//	pending  -> approved | rejected   (doctor only)
//	pending  -> cancelled             (either party)
//	approved -> completed             (doctor only)
//	approved -> cancelled             (either party)
//
// rejected, completed and cancelled are terminal. The store layer applies
// whatever it is told; this guard is consulted at the API boundary before
// every status mutation.
func CanTransition(actor Role, from, to Status) error {
	if from == to {
		return nil
	}
	if Terminal(from) {
		return &TransitionError{From: from, To: to, Actor: actor}
	}

	switch to {
	case StatusApproved, StatusRejected:
		if from != StatusPending {
			return &TransitionError{From: from, To: to, Actor: actor}
		}
		if actor != RoleDoctor {
			return &TransitionError{From: from, To: to, Actor: actor, Unauthorized: true}
		}
		return nil
	case StatusCompleted:
		if from != StatusApproved {
			return &TransitionError{From: from, To: to, Actor: actor}
		}
		if actor != RoleDoctor {
			return &TransitionError{From: from, To: to, Actor: actor, Unauthorized: true}
		}
		return nil
	case StatusCancelled:
		// pending or approved, by either party
		return nil
	case StatusPending:
		return &TransitionError{From: from, To: to, Actor: actor}
	default:
		return &TransitionError{From: from, To: to, Actor: actor}
	}
}
