// Package catalog provides read access to the service catalog. The booking
// core only ever reads name and price to populate the appointment snapshot;
// catalog writes are an administrative concern handled elsewhere.
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrServiceNotFound is returned when no service exists for the given id.
var ErrServiceNotFound = errors.New("service not found")

// Service is a bookable catalog entry.
type Service struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	BasePrice       float64   `json:"base_price"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
