package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/glowgrace/booking-platform/pkg/logging"
)

type activeLister interface {
	ListActive(ctx context.Context) ([]*Service, error)
}

// Handler exposes the public read side of the catalog.
type Handler struct {
	services activeLister
	logger   *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(services activeLister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{services: services, logger: logger}
}

// ListServices handles GET /api/services requests.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}
