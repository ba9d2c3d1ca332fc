// Package appointments implements the slot-booking core: conflict detection,
// the appointment status lifecycle, and booking analytics.
package appointments

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus tracks the payment lifecycle independently of the booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodOnline PaymentMethod = "ONLINE"
)

// ServiceSnapshot captures the service name and price agreed at booking
// time. Later catalog edits never change it.
type ServiceSnapshot struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// PaymentInfo holds the payment state attached to an appointment.
type PaymentInfo struct {
	TransactionID string        `json:"transaction_id"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	Method        PaymentMethod `json:"method"`
}

// Appointment is a booked slot. Date and TimeSlot are opaque keys
// ("2026-01-10", "10:00-11:00"); only exact-match equality is used.
type Appointment struct {
	ID            uuid.UUID       `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail string          `json:"customer_email"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	ServiceID     uuid.UUID       `json:"service_id"`
	StaffID       *uuid.UUID      `json:"staff_id,omitempty"`
	Snapshot      ServiceSnapshot `json:"service_snapshot"`
	Date          string          `json:"date"`
	TimeSlot      string          `json:"time_slot"`
	Status        Status          `json:"status"`
	Notes         string          `json:"notes"`
	Payment       PaymentInfo     `json:"payment_info"`
	ReminderSent  bool            `json:"reminder_sent"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateRequest is the booking intent submitted by a customer.
type CreateRequest struct {
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	CustomerEmail string     `json:"customer_email"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	ServiceID     uuid.UUID  `json:"service_id"`
	StaffID       *uuid.UUID `json:"staff_id,omitempty"`
	Date          string     `json:"date"`
	TimeSlot      string     `json:"time_slot"`
	Notes         string     `json:"notes"`
}

// Validate checks the required fields of a booking intent. Date and
// time slot are opaque; only non-emptiness is enforced here.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" {
		return fmt.Errorf("%w: customer_name is required", ErrValidation)
	}
	if strings.TrimSpace(r.CustomerPhone) == "" {
		return fmt.Errorf("%w: customer_phone is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(r.CustomerEmail); err != nil {
		return fmt.Errorf("%w: customer_email must be a valid email address", ErrValidation)
	}
	if r.ServiceID == uuid.Nil {
		return fmt.Errorf("%w: service_id is required", ErrValidation)
	}
	if strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if strings.TrimSpace(r.TimeSlot) == "" {
		return fmt.Errorf("%w: time_slot is required", ErrValidation)
	}
	return nil
}

// UpdateRequest is a partial update: empty fields are left unchanged.
// Setting Date or TimeSlot reschedules; setting Status transitions.
type UpdateRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Status   Status `json:"status"`
	Notes    *string `json:"notes,omitempty"`
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Date   string
	Status Status
}
