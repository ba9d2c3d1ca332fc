package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewBookingMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("created", 0.05)
	m.ObserveBooking("conflict", 0.01)
	m.ObserveSlotConflict()
	m.ObserveTransition("PENDING", "CONFIRMED")
	m.ObserveVerification("verified")
	m.ObserveNotification("delivered")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"glowgrace_booking_requests_total",
		"glowgrace_booking_slot_conflicts_total",
		"glowgrace_booking_status_transitions_total",
		"glowgrace_payments_verifications_total",
		"glowgrace_notify_deliveries_total",
	} {
		if !names[want] {
			t.Errorf("missing metric family %s", want)
		}
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("created", 0)
	m.ObserveSlotConflict()
	m.ObserveTransition("PENDING", "CANCELLED")
	m.ObserveVerification("mismatch")
	m.ObserveNotification("failed")
}
