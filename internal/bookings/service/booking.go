package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "renthub/internal/bookings/errors"
	"renthub/internal/bookings/repository"
	userrepo "renthub/internal/users/repository"
	vehicleserrors "renthub/internal/vehicles/errors"
	vehiclerepo "renthub/internal/vehicles/repository"
	"renthub/pkg/config"
	"renthub/pkg/events"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type CreateBookingInput struct {
	VehicleID     string
	RentStartDate time.Time
	RentEndDate   time.Time
}

// BookingService is the booking lifecycle engine: it owns every rule
// that decides whether a booking may be created, how it is priced, who
// may transition it, and how expired bookings are reconciled. It is
// the only writer of vehicle availability.
type BookingService interface {
	Create(ctx context.Context, principal model.Principal, input CreateBookingInput) (*model.CreatedBooking, error)
	List(ctx context.Context, principal model.Principal) ([]*model.BookingView, error)
	UpdateStatus(ctx context.Context, principal model.Principal, bookingID string, newStatus model.BookingStatus) (*model.Booking, error)
	ProcessExpiredBookings(ctx context.Context) (int, error)
}

type bookingService struct {
	repo        repository.BookingRepository
	vehicleRepo vehiclerepo.VehicleRepository
	userRepo    userrepo.UserRepository
	publisher   events.Publisher
	cfg         *config.Config

	// now is injectable so the date gates and the expiry sweep are
	// testable without a real clock.
	now func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	vehicleRepo vehiclerepo.VehicleRepository,
	userRepo userrepo.UserRepository,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:        repo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, principal model.Principal, input CreateBookingInput) (*model.CreatedBooking, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, input.VehicleID)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", input.VehicleID)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to check vehicle", err)
	}

	if vehicle.AvailabilityStatus != model.VehicleAvailable {
		return nil, apperrors.Conflict("Vehicle is not available for booking")
	}

	start := model.DateOnly(input.RentStartDate)
	end := model.DateOnly(input.RentEndDate)
	days := model.RentalDays(start, end)
	if days <= 0 {
		return nil, apperrors.InvalidInput("End date must be after start date")
	}

	booking := &model.Booking{
		CustomerID:    principal.ID,
		VehicleID:     vehicle.ID,
		RentStartDate: start,
		RentEndDate:   end,
		TotalPrice:    vehicle.DailyRentPrice * float64(days),
		Status:        model.BookingActive,
	}

	// The availability flip and the insert are one atomic unit; the
	// conditional flip is what serializes concurrent creates on the
	// same vehicle.
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		flipped, err := s.vehicleRepo.UpdateAvailabilityFrom(sessCtx, vehicle.ID, model.VehicleAvailable, model.VehicleBooked)
		if err != nil {
			return apperrors.Internal("Failed to reserve vehicle", err)
		}
		if !flipped {
			return apperrors.Conflict("Vehicle is not available for booking")
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created",
		"booking_id", booking.ID,
		"customer_id", booking.CustomerID,
		"vehicle_id", booking.VehicleID,
		"total_price", booking.TotalPrice,
		"days", days,
	)
	s.publish(ctx, events.BookingCreated, booking)

	return &model.CreatedBooking{
		Booking: *booking,
		Vehicle: model.VehicleSnapshot{
			VehicleName:    vehicle.VehicleName,
			DailyRentPrice: vehicle.DailyRentPrice,
		},
	}, nil
}

func (s *bookingService) List(ctx context.Context, principal model.Principal) ([]*model.BookingView, error) {
	customerFilter := ""
	if !principal.IsAdmin() {
		customerFilter = principal.ID
	}

	bookings, err := s.repo.FindByCustomer(ctx, customerFilter)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	views, err := s.buildViews(ctx, principal, bookings)
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *bookingService) buildViews(ctx context.Context, principal model.Principal, bookings []*model.Booking) ([]*model.BookingView, error) {
	vehicleIDs := make([]string, 0, len(bookings))
	customerIDs := make([]string, 0, len(bookings))
	seenVehicle := map[string]bool{}
	seenCustomer := map[string]bool{}
	for _, b := range bookings {
		if !seenVehicle[b.VehicleID] {
			seenVehicle[b.VehicleID] = true
			vehicleIDs = append(vehicleIDs, b.VehicleID)
		}
		if principal.IsAdmin() && !seenCustomer[b.CustomerID] {
			seenCustomer[b.CustomerID] = true
			customerIDs = append(customerIDs, b.CustomerID)
		}
	}

	vehicles, err := s.vehicleRepo.FindByIDs(ctx, vehicleIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to join vehicles", err)
	}

	var customers map[string]*model.User
	if principal.IsAdmin() {
		customers, err = s.userRepo.FindByIDs(ctx, customerIDs)
		if err != nil {
			return nil, apperrors.Internal("Failed to join customers", err)
		}
	}

	views := make([]*model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := &model.BookingView{Booking: *b}
		if v := vehicles[b.VehicleID]; v != nil {
			view.VehicleName = v.VehicleName
			view.RegistrationNumber = v.RegistrationNumber
			if !principal.IsAdmin() {
				view.VehicleType = v.Type
			}
		}
		if principal.IsAdmin() {
			if u := customers[b.CustomerID]; u != nil {
				view.CustomerName = u.Name
				view.CustomerEmail = u.Email
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, principal model.Principal, bookingID string, newStatus model.BookingStatus) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	today := model.DateOnly(s.now())
	if appErr := authorizeTransition(principal, booking, newStatus, today); appErr != nil {
		return nil, appErr
	}

	var updated *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		updated, err = s.repo.UpdateStatusFrom(sessCtx, booking.ID, model.BookingActive, newStatus)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				return apperrors.Conflict("Booking is no longer active")
			}
			return apperrors.Internal("Failed to update booking status", err)
		}

		// Cancelled and returned both free the vehicle. A no-op flip is
		// fine: the availability may already be correct after a race.
		if _, err := s.vehicleRepo.UpdateAvailabilityFrom(sessCtx, booking.VehicleID, model.VehicleBooked, model.VehicleAvailable); err != nil {
			return apperrors.Internal("Failed to release vehicle", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking status updated",
		"booking_id", booking.ID,
		"vehicle_id", booking.VehicleID,
		"status", newStatus,
		"actor_role", principal.Role,
	)
	switch newStatus {
	case model.BookingCancelled:
		s.publish(ctx, events.BookingCancelled, updated)
	case model.BookingReturned:
		s.publish(ctx, events.BookingReturned, updated)
	}

	return updated, nil
}

// ProcessExpiredBookings is the reconciliation sweep: every Active
// booking whose rental ended before today becomes Returned and frees
// its vehicle. Each booking is its own atomic unit so a long sweep
// never starves request handling, and a re-run after partial failure
// is safe because reconciled bookings drop out of the scan by status.
func (s *bookingService) ProcessExpiredBookings(ctx context.Context) (int, error) {
	today := model.DateOnly(s.now())

	expired, err := s.repo.FindActiveEndedBefore(ctx, today)
	if err != nil {
		return 0, apperrors.Internal("Failed to scan expired bookings", err)
	}

	count := 0
	for _, booking := range expired {
		var updated *model.Booking
		err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			var txErr error
			updated, txErr = s.repo.UpdateStatusFrom(sessCtx, booking.ID, model.BookingActive, model.BookingReturned)
			if txErr != nil {
				return txErr
			}
			_, txErr = s.vehicleRepo.UpdateAvailabilityFrom(sessCtx, booking.VehicleID, model.VehicleBooked, model.VehicleAvailable)
			return txErr
		})
		if err != nil {
			// A booking transitioned elsewhere mid-sweep is not a
			// failure; anything else is logged and retried next sweep.
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				continue
			}
			s.cfg.Log.Error("Failed to reconcile expired booking",
				"booking_id", booking.ID,
				"vehicle_id", booking.VehicleID,
				"error", err,
			)
			continue
		}

		count++
		s.publish(ctx, events.BookingExpired, updated)
	}

	if count > 0 {
		s.cfg.Log.Info("Expired bookings reconciled", "count", count)
	}
	return count, nil
}

func (s *bookingService) publish(ctx context.Context, eventType events.Type, booking *model.Booking) {
	evt := events.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		VehicleID:  booking.VehicleID,
		Status:     booking.Status,
		TotalPrice: booking.TotalPrice,
	}
	if err := s.publisher.PublishBookingEvent(ctx, evt); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
