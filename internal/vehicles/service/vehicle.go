package service

import (
	"context"
	"errors"
	"sync"

	vehicleserrors "renthub/internal/vehicles/errors"
	"renthub/internal/vehicles/repository"
	"renthub/internal/vehicles/validator"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
	"renthub/pkg/sanitizer"
)

// ActiveBookingCounter is the slice of the booking store this module
// needs: deletion is refused while a vehicle has an Active booking.
type ActiveBookingCounter interface {
	CountActiveByVehicle(ctx context.Context, vehicleID string) (int64, error)
}

type VehicleService interface {
	Create(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error)
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

type vehicleService struct {
	repo      repository.VehicleRepository
	bookings  ActiveBookingCounter
	validator *validator.VehicleValidator
	cfg       *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	bookings ActiveBookingCounter,
	v *validator.VehicleValidator,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:      repo,
		bookings:  bookings,
		validator: v,
		cfg:       cfg,
	}
}

func (s *vehicleService) Create(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	vehicle.VehicleName = sanitizer.NormalizeName(vehicle.VehicleName)
	vehicle.RegistrationNumber = sanitizer.NormalizeRegistration(vehicle.RegistrationNumber)
	if vehicle.AvailabilityStatus == "" {
		vehicle.AvailabilityStatus = model.VehicleAvailable
	}
	if err := s.validator.Validate(vehicle); err != nil {
		s.cfg.Log.Warn("Vehicle validation failed", "error", err)
		return nil, apperrors.Validation("Invalid vehicle input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, vehicleserrors.ErrDuplicateRegistration) {
			return nil, apperrors.Conflict("Vehicle with this registration number already exists")
		}
		return nil, apperrors.Internal("Failed to create vehicle", err)
	}

	s.cfg.Log.Info("Vehicle created",
		"id", vehicle.ID,
		"registration_number", vehicle.RegistrationNumber,
	)
	return vehicle, nil
}

func (s *vehicleService) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}

	return vehicle, nil
}

func (s *vehicleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, int64, error) {
	var count int64
	var vehicles []*model.Vehicle
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count vehicles", "error", errCount)
			errCount = apperrors.Internal("Failed to count vehicles", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		vehicles, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list vehicles", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve vehicles", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return vehicles, count, nil
}

func (s *vehicleService) Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates.VehicleName = sanitizer.NormalizeName(updates.VehicleName)
	updates.RegistrationNumber = sanitizer.NormalizeRegistration(updates.RegistrationNumber)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Vehicle update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid vehicle update", map[string]any{"error": err.Error()})
	}

	if updates.RegistrationNumber != "" && updates.RegistrationNumber != existing.RegistrationNumber {
		other, err := s.repo.FindByRegistration(ctx, updates.RegistrationNumber)
		if err != nil && !errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to check registration number", err)
		}
		if other != nil && other.ID != id {
			return nil, apperrors.Conflict("Registration number already exists")
		}
	}

	merged := s.merge(existing, updates)
	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, vehicleserrors.ErrDuplicateRegistration) {
			return nil, apperrors.Conflict("Registration number already exists")
		}
		return nil, apperrors.Internal("Failed to update vehicle", err)
	}

	s.cfg.Log.Info("Vehicle updated", "id", id)
	return merged, nil
}

func (s *vehicleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	active, err := s.bookings.CountActiveByVehicle(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check active bookings", err)
	}
	if active > 0 {
		return apperrors.Conflict("Cannot delete vehicle with active bookings")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return apperrors.Internal("Failed to delete vehicle", err)
	}

	s.cfg.Log.Info("Vehicle deleted", "id", id)
	return nil
}

func (s *vehicleService) merge(existing *model.Vehicle, updates *model.VehicleUpdate) *model.Vehicle {
	merged := *existing

	if updates.VehicleName != "" {
		merged.VehicleName = updates.VehicleName
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.RegistrationNumber != "" {
		merged.RegistrationNumber = updates.RegistrationNumber
	}
	if updates.DailyRentPrice != nil {
		merged.DailyRentPrice = *updates.DailyRentPrice
	}

	return &merged
}
