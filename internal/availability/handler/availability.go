package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/availability"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
)

type AvailabilityHandler struct {
	service availability.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service availability.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

// Resolve returns the slot grid for one specialist, service and day.
// Locks held by the requester show as free to them, so a caller never
// sees their own hold as contention.
func (h *AvailabilityHandler) Resolve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	specialistID := query.Get("specialist_id")
	if specialistID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("specialist_id parameter is required"))
		return
	}

	serviceID := query.Get("service_id")
	if serviceID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("service_id parameter is required"))
		return
	}

	date, err := httputil.ExtractDate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	identity := middleware.IdentityFrom(r.Context())

	slots, err := h.service.Resolve(r.Context(), specialistID, serviceID, date, identity.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, slots)
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Resolve)
}
