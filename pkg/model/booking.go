package model

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
	BookingReturned  BookingStatus = "returned"
)

// Terminal reports whether no further transition may leave the status.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingReturned
}

type Booking struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerID    string        `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	VehicleID     string        `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	RentStartDate time.Time     `json:"rent_start_date" bson:"rent_start_date" validate:"required"`
	RentEndDate   time.Time     `json:"rent_end_date" bson:"rent_end_date" validate:"required,gtfield=RentStartDate"`
	TotalPrice    float64       `json:"total_price" bson:"total_price" validate:"gt=0"`
	Status        BookingStatus `json:"status" bson:"status" validate:"required,oneof=active cancelled returned"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// VehicleSnapshot is the denormalized vehicle view attached to a
// freshly created booking for display. It is not persisted.
type VehicleSnapshot struct {
	VehicleName    string  `json:"vehicle_name"`
	DailyRentPrice float64 `json:"daily_rent_price"`
}

// CreatedBooking is the CreateBooking result: the stored booking plus
// the vehicle snapshot.
type CreatedBooking struct {
	Booking
	Vehicle VehicleSnapshot `json:"vehicle"`
}

// BookingView is a booking joined with customer and vehicle display
// fields for listings. Customer fields are populated for
// administrators only.
type BookingView struct {
	Booking
	CustomerName       string `json:"customer_name,omitempty"`
	CustomerEmail      string `json:"customer_email,omitempty"`
	VehicleName        string `json:"vehicle_name,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	VehicleType        string `json:"vehicle_type,omitempty"`
}

// CreateBookingRequest is the wire shape for booking creation. Dates
// are calendar dates with no time-of-day component.
type CreateBookingRequest struct {
	VehicleID     string `json:"vehicle_id" validate:"required,mongodb"`
	RentStartDate string `json:"rent_start_date" validate:"required,datetime=2006-01-02"`
	RentEndDate   string `json:"rent_end_date" validate:"required,datetime=2006-01-02"`
}

type UpdateBookingRequest struct {
	Status string `json:"status" validate:"required,oneof=cancelled returned"`
}

// RentalDays counts the calendar days between start and end, rounding
// partial days up. Zero or negative means the range is invalid.
func RentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// DateOnly truncates t to midnight UTC so bookings compare by calendar
// date, never time of day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
