package validator

import (
	"fmt"

	"renthub/pkg/logger"
	"renthub/pkg/model"

	"github.com/go-playground/validator/v10"
)

type VehicleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVehicleValidator(log *logger.Logger) *VehicleValidator {
	return &VehicleValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (vv *VehicleValidator) Validate(vehicle *model.Vehicle) error {
	return vv.check(vehicle)
}

func (vv *VehicleValidator) ValidateUpdate(updates *model.VehicleUpdate) error {
	return vv.check(updates)
}

func (vv *VehicleValidator) check(v any) error {
	err := vv.validate.Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var msgs []string
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), messageFor(fe)))
	}
	return fmt.Errorf("validation failed: %v", msgs)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "mongodb":
		return "must be a valid object ID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
