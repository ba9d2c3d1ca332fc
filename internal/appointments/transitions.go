package appointments

// legalTransitions enumerates every permitted status move. COMPLETED and
// CANCELLED are terminal; the empty sets make that explicit.
var legalTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransition reports whether the move from one status to another is
// permitted. Self-transitions are not.
func CanTransition(from, to Status) bool {
	return legalTransitions[from][to]
}

// notifiesCustomer reports whether entering the status triggers a
// customer email. Exactly CONFIRMED and CANCELLED do.
func notifiesCustomer(s Status) bool {
	return s == StatusConfirmed || s == StatusCancelled
}
