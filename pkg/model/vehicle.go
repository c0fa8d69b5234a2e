package model

import "time"

type AvailabilityStatus string

const (
	VehicleAvailable AvailabilityStatus = "available"
	VehicleBooked    AvailabilityStatus = "booked"
)

type Vehicle struct {
	ID                 string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleName        string             `json:"vehicle_name" bson:"vehicle_name" validate:"required,min=2,max=200"`
	Type               string             `json:"type" bson:"type" validate:"required,oneof=car bike van SUV"`
	RegistrationNumber string             `json:"registration_number" bson:"registration_number" validate:"required,min=2,max=50"`
	DailyRentPrice     float64            `json:"daily_rent_price" bson:"daily_rent_price" validate:"required,gt=0"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status" bson:"availability_status" validate:"omitempty,oneof=available booked"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// VehicleUpdate carries partial updates; nil/empty fields are left
// untouched. AvailabilityStatus is deliberately absent: only the
// booking engine flips it.
type VehicleUpdate struct {
	VehicleName        string   `json:"vehicle_name,omitempty" validate:"omitempty,min=2,max=200"`
	Type               string   `json:"type,omitempty" validate:"omitempty,oneof=car bike van SUV"`
	RegistrationNumber string   `json:"registration_number,omitempty" validate:"omitempty,min=2,max=50"`
	DailyRentPrice     *float64 `json:"daily_rent_price,omitempty" validate:"omitempty,gt=0"`
}
