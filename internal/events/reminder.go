package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glowgrace/booking-platform/internal/appointments"
	"github.com/glowgrace/booking-platform/internal/notify"
	"github.com/glowgrace/booking-platform/pkg/logging"
)

type reminderRepository interface {
	ListDueReminders(ctx context.Context, date string) ([]*appointments.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

type notificationQueue interface {
	Enqueue(ctx context.Context, msg notify.EmailMessage) (uuid.UUID, error)
}

// ReminderScheduler queues day-before reminder emails for confirmed
// appointments. Each appointment is reminded at most once.
type ReminderScheduler struct {
	repo     reminderRepository
	queue    notificationQueue
	logger   *logging.Logger
	interval time.Duration
	now      func() time.Time
}

func NewReminderScheduler(repo reminderRepository, queue notificationQueue, logger *logging.Logger) *ReminderScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReminderScheduler{
		repo:     repo,
		queue:    queue,
		logger:   logger,
		interval: time.Hour,
		now:      time.Now,
	}
}

func (s *ReminderScheduler) WithInterval(interval time.Duration) *ReminderScheduler {
	if interval > 0 {
		s.interval = interval
	}
	return s
}

// Start runs the reminder loop until the context is cancelled.
func (s *ReminderScheduler) Start(ctx context.Context) {
	if s.repo == nil || s.queue == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce queues reminders for tomorrow's confirmed appointments.
func (s *ReminderScheduler) RunOnce(ctx context.Context) {
	tomorrow := s.now().AddDate(0, 0, 1).Format("2006-01-02")

	due, err := s.repo.ListDueReminders(ctx, tomorrow)
	if err != nil {
		s.logger.Error("reminder lookup failed", "error", err, "date", tomorrow)
		return
	}

	for _, appt := range due {
		msg := notify.Reminder(appt.CustomerName, appt.CustomerEmail, appt.Snapshot.Name, appt.Date, appt.TimeSlot)
		if _, err := s.queue.Enqueue(ctx, msg); err != nil {
			s.logger.Error("failed to enqueue reminder", "error", err, "appointment_id", appt.ID)
			continue
		}
		if err := s.repo.MarkReminderSent(ctx, appt.ID); err != nil {
			s.logger.Error("failed to mark reminder sent", "error", err, "appointment_id", appt.ID)
			continue
		}
		s.logger.Info("reminder queued", "appointment_id", appt.ID, "date", appt.Date, "time_slot", appt.TimeSlot)
	}
}
