package appointments

import "errors"

var (
	// ErrValidation wraps all malformed-input failures on booking requests.
	ErrValidation = errors.New("invalid appointment request")

	// ErrSlotTaken is returned when a non-cancelled appointment already
	// occupies the requested (date, time_slot) pair.
	ErrSlotTaken = errors.New("time slot already booked")

	// ErrTargetSlotTaken is the reschedule flavor of ErrSlotTaken.
	ErrTargetSlotTaken = errors.New("target slot already booked")

	// ErrAppointmentNotFound is returned when no appointment matches the id.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned for status moves outside the
	// transition table, including any move out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownStatus is returned when a request carries a status value
	// outside the PENDING/CONFIRMED/COMPLETED/CANCELLED set.
	ErrUnknownStatus = errors.New("unknown appointment status")
)

// IsConflict reports whether err is a slot-exclusivity violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrTargetSlotTaken)
}
