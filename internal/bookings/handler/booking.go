package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/bookings/service"
	"slotbook/internal/workflow"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type BookingHandler struct {
	workflow workflow.WorkflowService
	ledger   service.BookingService
	log      *logger.Logger
}

func NewBookingHandler(wf workflow.WorkflowService, ledger service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		workflow: wf,
		ledger:   ledger,
		log:      log,
	}
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in workflow.ConfirmInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	identity := middleware.IdentityFrom(r.Context())

	booking, err := h.workflow.ConfirmBooking(r.Context(), identity, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

// List scopes results by role: admins see every booking, users see
// their own, guests see nothing.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())

	var bookings []*model.Booking
	var err error
	switch {
	case identity.IsAdmin():
		bookings, err = h.ledger.ListAll(r.Context())
	case identity.Authenticated():
		bookings, err = h.ledger.ListForUser(r.Context(), identity.UserID)
	default:
		bookings = []*model.Booking{}
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.Authenticated() {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	booking, err := h.ledger.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if booking.UserID != identity.UserID && !identity.IsAdmin() {
		httputil.WriteError(w, apperrors.Forbidden("booking belongs to another user"))
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())

	booking, err := h.workflow.CancelBooking(r.Context(), identity, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req rescheduleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	identity := middleware.IdentityFrom(r.Context())

	booking, err := h.workflow.RescheduleBooking(r.Context(), identity, ps.ByName("id"), req.StartTime, req.EndTime)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Confirm)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.PATCH("/api/v1/bookings/id/:id/reschedule", h.Reschedule)
}
