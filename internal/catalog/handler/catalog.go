package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/catalog/service"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

// requireAdmin guards the catalog mutations. Reads are public.
func (h *CatalogHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.IsAdmin() {
		httputil.WriteError(w, apperrors.Forbidden("admin role required"))
		return false
	}
	return true
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	var svc model.Service
	if err := httputil.DecodeJSON(r, &svc); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CreateService(r.Context(), &svc); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, svc)
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetServiceByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, svc)
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, services)
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	var updates model.ServiceUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	svc, err := h.service.UpdateService(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, svc)
}

func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	if err := h.service.DeleteService(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) CreateSpecialist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	var specialist model.Specialist
	if err := httputil.DecodeJSON(r, &specialist); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CreateSpecialist(r.Context(), &specialist); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, specialist)
}

func (h *CatalogHandler) GetSpecialist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	specialist, err := h.service.GetSpecialistByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, specialist)
}

func (h *CatalogHandler) ListSpecialists(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serviceID := r.URL.Query().Get("service_id")

	var specialists []*model.Specialist
	var err error
	if serviceID != "" {
		specialists, err = h.service.ListSpecialistsForService(r.Context(), serviceID)
	} else {
		specialists, err = h.service.ListSpecialists(r.Context())
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, specialists)
}

func (h *CatalogHandler) UpdateSpecialist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	var updates model.SpecialistUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	specialist, err := h.service.UpdateSpecialist(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, specialist)
}

func (h *CatalogHandler) DeleteSpecialist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r) {
		return
	}

	if err := h.service.DeleteSpecialist(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.ListServices)
	router.POST("/api/v1/services", h.CreateService)
	router.GET("/api/v1/services/:id", h.GetService)
	router.PATCH("/api/v1/services/:id", h.UpdateService)
	router.DELETE("/api/v1/services/:id", h.DeleteService)

	router.GET("/api/v1/specialists", h.ListSpecialists)
	router.POST("/api/v1/specialists", h.CreateSpecialist)
	router.GET("/api/v1/specialists/:id", h.GetSpecialist)
	router.PATCH("/api/v1/specialists/:id", h.UpdateSpecialist)
	router.DELETE("/api/v1/specialists/:id", h.DeleteSpecialist)
}
