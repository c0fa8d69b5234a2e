package handler

import (
	"encoding/json"
	"net/http"

	"renthub/internal/vehicles/service"
	apperrors "renthub/pkg/errors"
	httputil "renthub/pkg/http"
	"renthub/pkg/logger"
	"renthub/pkg/middleware"
	"renthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type VehicleHandler struct {
	service service.VehicleService
	log     *logger.Logger
}

func NewVehicleHandler(svc service.VehicleService, log *logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		service: svc,
		log:     log,
	}
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var vehicle model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	created, err := h.service.Create(r.Context(), &vehicle)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, created)
}

func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicle, err := h.service.GetByID(r.Context(), ps.ByName("vehicleId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, vehicle)
}

func (h *VehicleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	vehicles, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, vehicles, total, limit, offset)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.VehicleUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	vehicle, err := h.service.Update(r.Context(), ps.ByName("vehicleId"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, vehicle)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("vehicleId")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// Reads are public; mutations are admin-only.
func (h *VehicleHandler) RegisterRoutes(router *httprouter.Router, authenticate func(httprouter.Handle) httprouter.Handle) {
	router.GET("/api/v1/vehicles", h.GetAll)
	router.GET("/api/v1/vehicles/:vehicleId", h.GetByID)
	router.POST("/api/v1/vehicles", authenticate(middleware.RequireRole(model.RoleAdmin, h.Create)))
	router.PUT("/api/v1/vehicles/:vehicleId", authenticate(middleware.RequireRole(model.RoleAdmin, h.Update)))
	router.DELETE("/api/v1/vehicles/:vehicleId", authenticate(middleware.RequireRole(model.RoleAdmin, h.Delete)))
}
