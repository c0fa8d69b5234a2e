package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"renthub/internal/bookings/service"
	"renthub/internal/bookings/validator"
	apperrors "renthub/pkg/errors"
	httputil "renthub/pkg/http"
	"renthub/pkg/logger"
	"renthub/pkg/middleware"
	"renthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(svc service.BookingService, v *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   svc,
		validator: v,
		log:       log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.validator.ValidateCreate(&req); err != nil {
		h.log.Warn("Booking creation validation failed", "error", err)
		httputil.WriteError(w, apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()}))
		return
	}

	// Formats are already validated; parse cannot fail here.
	rentStart, _ := time.Parse(dateLayout, req.RentStartDate)
	rentEnd, _ := time.Parse(dateLayout, req.RentEndDate)

	created, err := h.service.Create(r.Context(), principal, service.CreateBookingInput{
		VehicleID:     req.VehicleID,
		RentStartDate: rentStart,
		RentEndDate:   rentEnd,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, created)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	bookings, err := h.service.List(r.Context(), principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}
	if err := h.validator.ValidateUpdate(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Booking status must be cancelled or returned"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), principal, ps.ByName("bookingId"), model.BookingStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router, authenticate func(httprouter.Handle) httprouter.Handle) {
	router.POST("/api/v1/bookings", authenticate(h.Create))
	router.GET("/api/v1/bookings", authenticate(h.List))
	router.PUT("/api/v1/bookings/:bookingId", authenticate(h.UpdateStatus))
}
