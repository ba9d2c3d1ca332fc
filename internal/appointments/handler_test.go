package appointments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowgrace/booking-platform/internal/catalog"
)

func newTestHandler(t *testing.T) (*Handler, *fakeCatalog, http.Handler) {
	t.Helper()
	repo := NewInMemoryRepository()
	cat := &fakeCatalog{services: map[uuid.UUID]*catalog.Service{}}
	svc := NewService(repo, cat, nil, nil, nil, "", "INR")
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	r.Post("/api/appointments", h.Create)
	r.Get("/api/appointments", h.List)
	r.Get("/api/appointments/analytics", h.Analytics)
	r.Get("/api/appointments/{id}", h.Get)
	r.Put("/api/appointments/{id}", h.Update)
	return h, cat, r
}

func postBooking(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreate(t *testing.T) {
	t.Run("returns 201 with the appointment", func(t *testing.T) {
		_, cat, r := newTestHandler(t)
		serviceID := addService(cat, "Basic Haircut", 50)

		rec := postBooking(t, r, bookingRequest(serviceID, "2026-09-01", "10:00-11:00"))
		require.Equal(t, http.StatusCreated, rec.Code)

		var appt Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appt))
		assert.Equal(t, StatusPending, appt.Status)
		assert.Equal(t, "Basic Haircut", appt.Snapshot.Name)
	})

	t.Run("returns 409 for a taken slot", func(t *testing.T) {
		_, cat, r := newTestHandler(t)
		serviceID := addService(cat, "Basic Haircut", 50)

		rec := postBooking(t, r, bookingRequest(serviceID, "2026-09-01", "10:00-11:00"))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = postBooking(t, r, bookingRequest(serviceID, "2026-09-01", "10:00-11:00"))
		require.Equal(t, http.StatusConflict, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "already booked")
	})

	t.Run("returns 400 for invalid input", func(t *testing.T) {
		_, cat, r := newTestHandler(t)
		serviceID := addService(cat, "Basic Haircut", 50)

		req := bookingRequest(serviceID, "2026-09-01", "10:00-11:00")
		req.CustomerName = ""
		rec := postBooking(t, r, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 400 for malformed json", func(t *testing.T) {
		_, _, r := newTestHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 404 for unknown service", func(t *testing.T) {
		_, _, r := newTestHandler(t)
		rec := postBooking(t, r, bookingRequest(uuid.New(), "2026-09-01", "10:00-11:00"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerGet(t *testing.T) {
	_, cat, r := newTestHandler(t)
	serviceID := addService(cat, "Gel Manicure", 35)

	rec := postBooking(t, r, bookingRequest(serviceID, "2026-09-01", "10:00-11:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/appointments/"+created.ID.String(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/appointments/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/appointments/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerUpdate(t *testing.T) {
	_, cat, r := newTestHandler(t)
	serviceID := addService(cat, "Full Facial", 80)

	rec := postBooking(t, r, bookingRequest(serviceID, "2026-09-01", "10:00-11:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	put := func(t *testing.T, id string, patch any) *httptest.ResponseRecorder {
		t.Helper()
		buf, err := json.Marshal(patch)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/api/appointments/"+id, bytes.NewReader(buf))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("confirms a pending booking", func(t *testing.T) {
		rec := put(t, created.ID.String(), UpdateRequest{Status: StatusConfirmed})
		require.Equal(t, http.StatusOK, rec.Code)

		var got Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, StatusConfirmed, got.Status)
	})

	t.Run("illegal transition returns 400", func(t *testing.T) {
		rec := put(t, created.ID.String(), UpdateRequest{Status: StatusPending})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reschedule conflict returns 409", func(t *testing.T) {
		rec := postBooking(t, r, bookingRequest(serviceID, "2026-09-01", "12:00-13:00"))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = put(t, created.ID.String(), UpdateRequest{TimeSlot: "12:00-13:00"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown appointment returns 404", func(t *testing.T) {
		rec := put(t, uuid.NewString(), UpdateRequest{Status: StatusConfirmed})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerList(t *testing.T) {
	_, cat, r := newTestHandler(t)
	serviceID := addService(cat, "Basic Haircut", 50)

	for i, slot := range []string{"09:00-10:00", "10:00-11:00"} {
		date := fmt.Sprintf("2026-09-0%d", i+1)
		rec := postBooking(t, r, bookingRequest(serviceID, date, slot))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("lists everything", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var appts []Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
		assert.Len(t, appts, 2)
	})

	t.Run("filters by date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/appointments?date=2026-09-02", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var appts []Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
		assert.Len(t, appts, 1)
	})

	t.Run("rejects bad status filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/appointments?status=WAITING", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerAnalytics(t *testing.T) {
	_, cat, r := newTestHandler(t)
	serviceID := addService(cat, "Gel Manicure", 35)

	rec := postBooking(t, r, bookingRequest(serviceID, "2026-09-01", "10:00-11:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/analytics", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, int64(1), report.Summary.Total)
	assert.Equal(t, int64(1), report.Summary.Pending)
	require.Len(t, report.PopularServices, 1)
	assert.Equal(t, "Gel Manicure", report.PopularServices[0].Name)
}
