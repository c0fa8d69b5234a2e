package service

import (
	"time"

	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
)

// transitionCheck is an extra precondition a role must satisfy before
// driving a booking into the target status.
type transitionCheck func(booking *model.Booking, today time.Time) *apperrors.AppError

// transitions is the booking status matrix: target status → roles
// allowed to request it → per-role precondition. A role absent from a
// row may never request that status. Only Active bookings transition;
// cancelled and returned are terminal.
var transitions = map[model.BookingStatus]map[model.Role]transitionCheck{
	model.BookingCancelled: {
		model.RoleCustomer: cancellationWindowOpen,
		// Administrators cancel without the date gate.
		model.RoleAdmin: nil,
	},
	model.BookingReturned: {
		model.RoleAdmin: nil,
	},
}

// cancellationWindowOpen closes the customer's cancellation window at
// the start of the rental: on or after rent_start_date is too late.
func cancellationWindowOpen(booking *model.Booking, today time.Time) *apperrors.AppError {
	if !today.Before(model.DateOnly(booking.RentStartDate)) {
		return apperrors.Conflict("Cannot cancel booking after start date")
	}
	return nil
}

// authorizeTransition applies the matrix to one requested transition.
// Check order: requested status, ownership, role permission, terminal
// state, the role's precondition.
func authorizeTransition(principal model.Principal, booking *model.Booking, to model.BookingStatus, today time.Time) *apperrors.AppError {
	roleChecks, known := transitions[to]
	if !known {
		return apperrors.InvalidInput("Booking status can only be set to cancelled or returned")
	}

	if principal.Role == model.RoleCustomer && booking.CustomerID != principal.ID {
		return apperrors.Forbidden("You can only update your own bookings")
	}

	check, allowed := roleChecks[principal.Role]
	if !allowed {
		if principal.Role == model.RoleCustomer {
			return apperrors.Forbidden("Customers can only cancel bookings")
		}
		return apperrors.Forbidden("Your role cannot perform this status change")
	}

	if booking.Status.Terminal() {
		if booking.Status == model.BookingReturned {
			return apperrors.Conflict("Booking is already returned")
		}
		return apperrors.Conflict("Booking is already cancelled")
	}

	if check != nil {
		if err := check(booking, today); err != nil {
			return err
		}
	}
	return nil
}
