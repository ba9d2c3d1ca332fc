package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowgrace/booking-platform/internal/appointments"
	"github.com/glowgrace/booking-platform/internal/notify"
)

type fakeReminderRepo struct {
	due     map[string][]*appointments.Appointment
	marked  []uuid.UUID
	listErr error
	markErr error
}

func (f *fakeReminderRepo) ListDueReminders(ctx context.Context, date string) ([]*appointments.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due[date], nil
}

func (f *fakeReminderRepo) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

type memoryQueue struct {
	queued []notify.EmailMessage
	err    error
}

func (q *memoryQueue) Enqueue(ctx context.Context, msg notify.EmailMessage) (uuid.UUID, error) {
	if q.err != nil {
		return uuid.Nil, q.err
	}
	q.queued = append(q.queued, msg)
	return uuid.New(), nil
}

func confirmedAppointment(date, slot string) *appointments.Appointment {
	return &appointments.Appointment{
		ID:            uuid.New(),
		CustomerName:  "Asha Patel",
		CustomerEmail: "asha@example.com",
		Snapshot:      appointments.ServiceSnapshot{Name: "Gel Manicure", Price: 35},
		Date:          date,
		TimeSlot:      slot,
		Status:        appointments.StatusConfirmed,
	}
}

func TestReminderSchedulerRunOnce(t *testing.T) {
	frozen := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	t.Run("queues reminders for tomorrow and marks them", func(t *testing.T) {
		appt := confirmedAppointment("2026-09-01", "10:00-11:00")
		repo := &fakeReminderRepo{due: map[string][]*appointments.Appointment{
			"2026-09-01": {appt},
		}}
		queue := &memoryQueue{}

		s := NewReminderScheduler(repo, queue, nil)
		s.now = func() time.Time { return frozen }
		s.RunOnce(context.Background())

		require.Len(t, queue.queued, 1)
		assert.Equal(t, "asha@example.com", queue.queued[0].To)
		assert.Contains(t, queue.queued[0].Body, "Gel Manicure")
		require.Len(t, repo.marked, 1)
		assert.Equal(t, appt.ID, repo.marked[0])
	})

	t.Run("nothing due is a no-op", func(t *testing.T) {
		repo := &fakeReminderRepo{due: map[string][]*appointments.Appointment{}}
		queue := &memoryQueue{}

		s := NewReminderScheduler(repo, queue, nil)
		s.now = func() time.Time { return frozen }
		s.RunOnce(context.Background())

		assert.Empty(t, queue.queued)
		assert.Empty(t, repo.marked)
	})

	t.Run("enqueue failure leaves the appointment unmarked", func(t *testing.T) {
		appt := confirmedAppointment("2026-09-01", "10:00-11:00")
		repo := &fakeReminderRepo{due: map[string][]*appointments.Appointment{
			"2026-09-01": {appt},
		}}
		queue := &memoryQueue{err: errors.New("db down")}

		s := NewReminderScheduler(repo, queue, nil)
		s.now = func() time.Time { return frozen }
		s.RunOnce(context.Background())

		assert.Empty(t, repo.marked)
	})

	t.Run("lookup failure is logged and skipped", func(t *testing.T) {
		repo := &fakeReminderRepo{listErr: errors.New("db down")}
		queue := &memoryQueue{}

		s := NewReminderScheduler(repo, queue, nil)
		s.now = func() time.Time { return frozen }
		s.RunOnce(context.Background())

		assert.Empty(t, queue.queued)
	})
}
