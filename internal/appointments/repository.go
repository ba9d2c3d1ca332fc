package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for appointment storage. Implementations
// must make the insert/update itself the arbiter of slot exclusivity: a
// write that would leave two non-cancelled appointments on the same
// (date, time_slot) pair fails with ErrSlotTaken.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	IsSlotTaken(ctx context.Context, date, timeSlot string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	Update(ctx context.Context, appt *Appointment) error
	ListDueReminders(ctx context.Context, date string) ([]*Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (StatusCounts, error)
	TopServices(ctx context.Context, limit int) ([]ServiceUsage, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests and
// local development. It enforces the same active-slot uniqueness the
// partial index provides in Postgres.
type InMemoryRepository struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appts: make(map[uuid.UUID]*Appointment)}
}

func (r *InMemoryRepository) slotTakenLocked(date, timeSlot string, excludeID uuid.UUID) bool {
	for _, a := range r.appts {
		if a.ID == excludeID {
			continue
		}
		if a.Date == date && a.TimeSlot == timeSlot && a.Status != StatusCancelled {
			return true
		}
	}
	return false
}

// Create inserts a new appointment, failing with ErrSlotTaken when the
// active slot is already held.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slotTakenLocked(appt.Date, appt.TimeSlot, uuid.Nil) {
		return ErrSlotTaken
	}
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	stored := *appt
	r.appts[appt.ID] = &stored
	return nil
}

// GetByID retrieves an appointment by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *appt
	return &out, nil
}

// IsSlotTaken reports whether a non-cancelled appointment other than
// excludeID occupies the slot.
func (r *InMemoryRepository) IsSlotTaken(ctx context.Context, date, timeSlot string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slotTakenLocked(date, timeSlot, excludeID), nil
}

// List returns appointments matching the filter, ordered by date then
// time slot.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*Appointment{}
	for _, a := range r.appts {
		if filter.Date != "" && a.Date != filter.Date {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

// Update persists the full appointment record, re-checking slot
// exclusivity against other active appointments.
func (r *InMemoryRepository) Update(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appts[appt.ID]; !ok {
		return ErrAppointmentNotFound
	}
	if appt.Status != StatusCancelled && r.slotTakenLocked(appt.Date, appt.TimeSlot, appt.ID) {
		return ErrSlotTaken
	}
	appt.UpdatedAt = time.Now().UTC()
	stored := *appt
	r.appts[appt.ID] = &stored
	return nil
}

// ListDueReminders returns confirmed, un-reminded appointments for a date.
func (r *InMemoryRepository) ListDueReminders(ctx context.Context, date string) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*Appointment{}
	for _, a := range r.appts {
		if a.Date == date && a.Status == StatusConfirmed && !a.ReminderSent {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot < out[j].TimeSlot })
	return out, nil
}

// MarkReminderSent flags an appointment so the reminder is sent once.
func (r *InMemoryRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.ReminderSent = true
	return nil
}

// CountByStatus tallies all appointments per lifecycle state.
func (r *InMemoryRepository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var counts StatusCounts
	for _, a := range r.appts {
		counts.Total++
		switch a.Status {
		case StatusPending:
			counts.Pending++
		case StatusConfirmed:
			counts.Confirmed++
		case StatusCompleted:
			counts.Completed++
		case StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts, nil
}

// TopServices ranks snapshot service names by booking count, ties broken
// by name so the order is deterministic.
func (r *InMemoryRepository) TopServices(ctx context.Context, limit int) ([]ServiceUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName := make(map[string]int64)
	for _, a := range r.appts {
		byName[a.Snapshot.Name]++
	}
	out := make([]ServiceUsage, 0, len(byName))
	for name, count := range byName {
		out = append(out, ServiceUsage{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
