package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/locks"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

// acquireRequest accepts either the canonical slot key or its parts.
type acquireRequest struct {
	SlotKey      string    `json:"slot_key,omitempty"`
	SpecialistID string    `json:"specialist_id,omitempty"`
	StartTime    time.Time `json:"start_time,omitempty"`
}

func (r *acquireRequest) key() (model.SlotKey, error) {
	if r.SlotKey != "" {
		key, err := model.ParseSlotKey(r.SlotKey)
		if err != nil {
			return model.SlotKey{}, apperrors.InvalidInput("malformed slot_key")
		}
		return key, nil
	}
	if r.SpecialistID == "" || r.StartTime.IsZero() {
		return model.SlotKey{}, apperrors.InvalidInput("slot_key or specialist_id and start_time are required")
	}
	return model.NewSlotKey(r.SpecialistID, r.StartTime), nil
}

type LockHandler struct {
	manager *locks.Manager
	log     *logger.Logger
}

func NewLockHandler(manager *locks.Manager, log *logger.Logger) *LockHandler {
	return &LockHandler{
		manager: manager,
		log:     log,
	}
}

func (h *LockHandler) Acquire(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.Authenticated() {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required to lock a slot"))
		return
	}

	var req acquireRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	key, err := req.key()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	lock, err := h.manager.Acquire(r.Context(), key, identity.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, lock)
}

func (h *LockHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.Authenticated() {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required to release a slot"))
		return
	}

	key, err := model.ParseSlotKey(ps.ByName("key"))
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("malformed slot key"))
		return
	}

	if err := h.manager.Release(r.Context(), key, identity.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *LockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/locks", h.Acquire)
	router.DELETE("/api/v1/locks/:key", h.Release)
}
