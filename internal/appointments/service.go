package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/glowgrace/booking-platform/internal/catalog"
	"github.com/glowgrace/booking-platform/internal/notify"
	"github.com/glowgrace/booking-platform/internal/observability/metrics"
	"github.com/glowgrace/booking-platform/pkg/logging"
)

var bookingTracer = otel.Tracer("glowgrace.internal.appointments")

// Notifier queues an email for asynchronous delivery. Enqueue failures
// never fail the booking operation that triggered them.
type Notifier interface {
	Enqueue(ctx context.Context, msg notify.EmailMessage) (uuid.UUID, error)
}

// Service orchestrates booking creation, reschedules, status transitions
// and analytics.
type Service struct {
	repo       Repository
	catalog    catalog.Resolver
	notifier   Notifier
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
	adminEmail string
	currency   string
}

// NewService constructs the booking service. notifier and metrics may be
// nil; notifications and instrumentation are then skipped.
func NewService(repo Repository, resolver catalog.Resolver, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger, adminEmail, currency string) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if resolver == nil {
		panic("appointments: catalog resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		repo:       repo,
		catalog:    resolver,
		notifier:   notifier,
		metrics:    m,
		logger:     logger,
		adminEmail: adminEmail,
		currency:   currency,
	}
}

// Create books a slot. The fast-path conflict check gives a friendly
// error; the repository's unique constraint settles concurrent races.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.create")
	defer span.End()
	start := time.Now()

	if err := req.Validate(); err != nil {
		s.metrics.ObserveBooking("invalid", time.Since(start).Seconds())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("booking.date", req.Date),
		attribute.String("booking.time_slot", req.TimeSlot),
	)

	taken, err := s.repo.IsSlotTaken(ctx, req.Date, req.TimeSlot, uuid.Nil)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("error", time.Since(start).Seconds())
		return nil, err
	}
	if taken {
		s.metrics.ObserveBooking("conflict", time.Since(start).Seconds())
		s.metrics.ObserveSlotConflict()
		return nil, ErrSlotTaken
	}

	svc, err := s.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			s.metrics.ObserveBooking("service_not_found", time.Since(start).Seconds())
			return nil, err
		}
		span.RecordError(err)
		s.metrics.ObserveBooking("error", time.Since(start).Seconds())
		return nil, err
	}

	appt := &Appointment{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		CustomerID:    req.CustomerID,
		ServiceID:     svc.ID,
		StaffID:       req.StaffID,
		Snapshot:      ServiceSnapshot{Name: svc.Name, Price: svc.BasePrice},
		Date:          req.Date,
		TimeSlot:      req.TimeSlot,
		Status:        StatusPending,
		Notes:         req.Notes,
		Payment: PaymentInfo{
			Currency: s.currency,
			Status:   PaymentPending,
			Method:   MethodCash,
		},
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			// A concurrent writer won the slot after our fast-path check.
			s.metrics.ObserveBooking("conflict", time.Since(start).Seconds())
			s.metrics.ObserveSlotConflict()
			return nil, ErrSlotTaken
		}
		span.RecordError(err)
		s.metrics.ObserveBooking("error", time.Since(start).Seconds())
		return nil, err
	}

	s.enqueue(ctx, notify.BookingPending(appt.CustomerName, appt.CustomerEmail, appt.Snapshot.Name, appt.Date, appt.TimeSlot))
	if s.adminEmail != "" {
		s.enqueue(ctx, notify.AdminNewBooking(s.adminEmail, appt.CustomerName, appt.CustomerEmail, appt.Snapshot.Name, appt.Date, appt.TimeSlot))
	}

	s.metrics.ObserveBooking("created", time.Since(start).Seconds())
	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"service", appt.Snapshot.Name,
		"date", appt.Date,
		"time_slot", appt.TimeSlot,
	)
	return appt, nil
}

// Get returns a single appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns appointments matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// Update applies a reschedule and/or a status transition. Nothing is
// persisted when any part of the patch is rejected.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch *UpdateRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.update")
	defer span.End()
	span.SetAttributes(attribute.String("booking.appointment_id", id.String()))

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	targetDate := appt.Date
	targetSlot := appt.TimeSlot
	if patch.Date != "" {
		targetDate = patch.Date
	}
	if patch.TimeSlot != "" {
		targetSlot = patch.TimeSlot
	}

	rescheduled := targetDate != appt.Date || targetSlot != appt.TimeSlot
	if rescheduled {
		taken, err := s.repo.IsSlotTaken(ctx, targetDate, targetSlot, appt.ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if taken {
			s.metrics.ObserveSlotConflict()
			return nil, ErrTargetSlotTaken
		}
		appt.Date = targetDate
		appt.TimeSlot = targetSlot
	}

	previous := appt.Status
	if patch.Status != "" && patch.Status != previous {
		if !ValidStatus(patch.Status) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, patch.Status)
		}
		if !CanTransition(previous, patch.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, previous, patch.Status)
		}
		appt.Status = patch.Status
	}

	if patch.Notes != nil {
		appt.Notes = *patch.Notes
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveSlotConflict()
			return nil, ErrTargetSlotTaken
		}
		span.RecordError(err)
		return nil, err
	}

	if appt.Status != previous {
		s.metrics.ObserveTransition(string(previous), string(appt.Status))
		s.logger.Info("appointment status changed",
			"appointment_id", appt.ID,
			"from", previous,
			"to", appt.Status,
		)
		if notifiesCustomer(appt.Status) {
			if msg, ok := notify.StatusChanged(appt.ID.String(), appt.CustomerName, appt.CustomerEmail, string(appt.Status)); ok {
				s.enqueue(ctx, msg)
			}
		}
	}
	if rescheduled {
		s.logger.Info("appointment rescheduled",
			"appointment_id", appt.ID,
			"date", appt.Date,
			"time_slot", appt.TimeSlot,
		)
	}

	return appt, nil
}

// ConfirmPayment records a verified online payment against the
// appointment and confirms it when still pending. Called only after the
// gateway signature has been verified.
func (s *Service) ConfirmPayment(ctx context.Context, id uuid.UUID, transactionID string, amount float64) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.confirm_payment")
	defer span.End()
	span.SetAttributes(attribute.String("booking.appointment_id", id.String()))

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if amount <= 0 {
		amount = appt.Snapshot.Price
	}
	appt.Payment.TransactionID = transactionID
	appt.Payment.Amount = amount
	appt.Payment.Status = PaymentPaid
	appt.Payment.Method = MethodOnline

	previous := appt.Status
	if previous == StatusPending {
		appt.Status = StatusConfirmed
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if appt.Status != previous {
		s.metrics.ObserveTransition(string(previous), string(appt.Status))
		if msg, ok := notify.StatusChanged(appt.ID.String(), appt.CustomerName, appt.CustomerEmail, string(appt.Status)); ok {
			s.enqueue(ctx, msg)
		}
	}

	s.logger.Info("payment recorded",
		"appointment_id", appt.ID,
		"transaction_id", transactionID,
		"amount", amount,
	)
	return appt, nil
}

// Analytics computes the operational booking summary.
func (s *Service) Analytics(ctx context.Context) (*Report, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	popular, err := s.repo.TopServices(ctx, topServicesLimit)
	if err != nil {
		return nil, err
	}
	return &Report{Summary: counts, PopularServices: popular}, nil
}

func (s *Service) enqueue(ctx context.Context, msg notify.EmailMessage) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Enqueue(ctx, msg); err != nil {
		s.logger.Error("failed to enqueue notification", "error", err, "to", msg.To, "subject", msg.Subject)
	}
}
