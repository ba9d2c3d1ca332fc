package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/glowgrace/booking-platform/internal/appointments"
	"github.com/glowgrace/booking-platform/internal/observability/metrics"
	"github.com/glowgrace/booking-platform/pkg/logging"
)

// PaymentApplier records a verified payment against an appointment.
// Implemented by the booking service.
type PaymentApplier interface {
	ConfirmPayment(ctx context.Context, id uuid.UUID, transactionID string, amount float64) (*appointments.Appointment, error)
}

// Handler exposes order creation and payment verification.
type Handler struct {
	orders   OrderCreator
	applier  PaymentApplier
	secret   string
	currency string
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewHandler creates a payments handler. orders may be nil when the
// gateway is not configured; verification still works.
func NewHandler(orders OrderCreator, applier PaymentApplier, secret, currency string, m *metrics.BookingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if currency == "" {
		currency = "INR"
	}
	return &Handler{
		orders:   orders,
		applier:  applier,
		secret:   secret,
		currency: currency,
		metrics:  m,
		logger:   logger,
	}
}

type createOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

// CreateOrder handles POST /api/payments/create-order requests.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount is required")
		return
	}
	if h.orders == nil {
		respondError(w, http.StatusServiceUnavailable, ErrGatewayNotConfigured.Error())
		return
	}
	if req.Currency == "" {
		req.Currency = h.currency
	}

	order, err := h.orders.CreateOrder(r.Context(), req.Amount, req.Currency, req.Receipt)
	if err != nil {
		h.logger.Error("order creation failed", "error", err)
		respondError(w, http.StatusBadGateway, "payment gateway error")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

type verifyRequest struct {
	OrderID       string  `json:"gateway_order_id"`
	PaymentID     string  `json:"gateway_payment_id"`
	Signature     string  `json:"gateway_signature"`
	AppointmentID string  `json:"appointment_id"`
	Amount        float64 `json:"amount"`
}

type verifyResponse struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	PaymentID   string                    `json:"payment_id"`
	Appointment *appointments.Appointment `json:"appointment,omitempty"`
}

// Verify handles POST /api/payments/verify requests. A signature mismatch
// rejects the confirmation outright; nothing is partially applied.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		respondError(w, http.StatusBadRequest, "order id, payment id and signature are required")
		return
	}

	if !VerifySignature(req.OrderID, req.PaymentID, req.Signature, h.secret) {
		h.metrics.ObserveVerification("mismatch")
		h.logger.Warn("payment signature mismatch", "order_id", req.OrderID, "payment_id", req.PaymentID)
		respondError(w, http.StatusBadRequest, "invalid signature")
		return
	}
	h.metrics.ObserveVerification("verified")

	resp := verifyResponse{
		Success:   true,
		Message:   "payment verified successfully",
		PaymentID: req.PaymentID,
	}

	// When the caller names an appointment, record the payment and
	// confirm the booking in the same request.
	if req.AppointmentID != "" && h.applier != nil {
		id, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid appointment id")
			return
		}
		appt, err := h.applier.ConfirmPayment(r.Context(), id, req.PaymentID, req.Amount)
		if err != nil {
			if errors.Is(err, appointments.ErrAppointmentNotFound) {
				respondError(w, http.StatusNotFound, err.Error())
				return
			}
			h.logger.Error("failed to apply verified payment", "error", err, "appointment_id", id)
			respondError(w, http.StatusInternalServerError, "failed to record payment")
			return
		}
		resp.Appointment = appt
	}

	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
