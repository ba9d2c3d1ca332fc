package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowgrace/booking-platform/internal/appointments"
)

const testSecret = "test_key_secret"

type fakeOrderCreator struct {
	order *Order
	err   error
}

func (f *fakeOrderCreator) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *f.order
	out.Amount = int64(amount * 100)
	out.Currency = currency
	return &out, nil
}

type fakeApplier struct {
	appt   *appointments.Appointment
	err    error
	lastID uuid.UUID
	amount float64
	txn    string
}

func (f *fakeApplier) ConfirmPayment(ctx context.Context, id uuid.UUID, transactionID string, amount float64) (*appointments.Appointment, error) {
	f.lastID = id
	f.txn = transactionID
	f.amount = amount
	if f.err != nil {
		return nil, f.err
	}
	return f.appt, nil
}

func post(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandlerCreateOrder(t *testing.T) {
	t.Run("creates an order", func(t *testing.T) {
		orders := &fakeOrderCreator{order: &Order{ID: "order_123", Status: "created"}}
		h := NewHandler(orders, nil, testSecret, "INR", nil, nil)

		rec := post(t, h.CreateOrder, map[string]any{"amount": 80})
		require.Equal(t, http.StatusOK, rec.Code)

		var order Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
		assert.Equal(t, "order_123", order.ID)
		assert.Equal(t, int64(8000), order.Amount)
		assert.Equal(t, "INR", order.Currency)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		h := NewHandler(&fakeOrderCreator{order: &Order{}}, nil, testSecret, "INR", nil, nil)
		rec := post(t, h.CreateOrder, map[string]any{"amount": 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("gateway unconfigured returns 503", func(t *testing.T) {
		h := NewHandler(nil, nil, testSecret, "INR", nil, nil)
		rec := post(t, h.CreateOrder, map[string]any{"amount": 80})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("gateway failure returns 502", func(t *testing.T) {
		h := NewHandler(&fakeOrderCreator{err: errors.New("gateway boom")}, nil, testSecret, "INR", nil, nil)
		rec := post(t, h.CreateOrder, map[string]any{"amount": 80})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandlerVerify(t *testing.T) {
	t.Run("valid signature verifies", func(t *testing.T) {
		h := NewHandler(nil, nil, testSecret, "INR", nil, nil)

		rec := post(t, h.Verify, map[string]any{
			"gateway_order_id":   "order_123",
			"gateway_payment_id": "pay_456",
			"gateway_signature":  sign("order_123", "pay_456", testSecret),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp verifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "pay_456", resp.PaymentID)
		assert.Nil(t, resp.Appointment)
	})

	t.Run("tampered signature is rejected", func(t *testing.T) {
		h := NewHandler(nil, nil, testSecret, "INR", nil, nil)

		rec := post(t, h.Verify, map[string]any{
			"gateway_order_id":   "order_123",
			"gateway_payment_id": "pay_456",
			"gateway_signature":  sign("order_123", "pay_457", testSecret),
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid signature", body["error"])
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		h := NewHandler(nil, nil, testSecret, "INR", nil, nil)
		rec := post(t, h.Verify, map[string]any{"gateway_order_id": "order_123"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("verified payment confirms the appointment", func(t *testing.T) {
		apptID := uuid.New()
		applier := &fakeApplier{appt: &appointments.Appointment{ID: apptID, Status: appointments.StatusConfirmed}}
		h := NewHandler(nil, applier, testSecret, "INR", nil, nil)

		rec := post(t, h.Verify, map[string]any{
			"gateway_order_id":   "order_123",
			"gateway_payment_id": "pay_456",
			"gateway_signature":  sign("order_123", "pay_456", testSecret),
			"appointment_id":     apptID.String(),
			"amount":             80,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, apptID, applier.lastID)
		assert.Equal(t, "pay_456", applier.txn)
		assert.Equal(t, 80.0, applier.amount)

		var resp verifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Appointment)
		assert.Equal(t, appointments.StatusConfirmed, resp.Appointment.Status)
	})

	t.Run("mismatch never reaches the applier", func(t *testing.T) {
		applier := &fakeApplier{appt: &appointments.Appointment{}}
		h := NewHandler(nil, applier, testSecret, "INR", nil, nil)

		rec := post(t, h.Verify, map[string]any{
			"gateway_order_id":   "order_123",
			"gateway_payment_id": "pay_456",
			"gateway_signature":  "deadbeef",
			"appointment_id":     uuid.NewString(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, uuid.Nil, applier.lastID)
	})

	t.Run("unknown appointment returns 404", func(t *testing.T) {
		applier := &fakeApplier{err: appointments.ErrAppointmentNotFound}
		h := NewHandler(nil, applier, testSecret, "INR", nil, nil)

		rec := post(t, h.Verify, map[string]any{
			"gateway_order_id":   "order_123",
			"gateway_payment_id": "pay_456",
			"gateway_signature":  sign("order_123", "pay_456", testSecret),
			"appointment_id":     uuid.NewString(),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
