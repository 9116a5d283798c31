package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidDateRange      = errors.New("check-out must be after check-in")
	ErrRoomUnavailable       = errors.New("room unavailable for the requested dates")
	ErrBookingNotEditable    = errors.New("booking is cancelled or completed")
	ErrInvalidTransition     = errors.New("invalid booking status transition")
	ErrAlreadyCancelled      = errors.New("booking already cancelled")
	ErrCancellationClosed    = errors.New("cancellation window closed")
	ErrRoomHasBookings       = errors.New("room has active bookings")
	ErrDuplicateRoomNumber   = errors.New("room number already exists in hotel")
	ErrDuplicateHotel        = errors.New("hotel already exists in city")
	ErrDuplicateReview       = errors.New("user already reviewed this hotel")
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
	ErrReviewNotEligible     = errors.New("no completed booking at this hotel")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrDuplicatePayment      = errors.New("booking already has a payment")
	ErrPaymentAlreadySettled = errors.New("payment already settled")
	ErrGatewayMismatch       = errors.New("gateway transaction does not match payment")
)

// ActiveBookingsError reports which bookings block a non-forced room delete.
type ActiveBookingsError struct {
	RoomID     int64
	BookingIDs []int64
}

func (e *ActiveBookingsError) Error() string {
	return fmt.Sprintf("room %d has active bookings %v", e.RoomID, e.BookingIDs)
}

func (e *ActiveBookingsError) Unwrap() error { return ErrRoomHasBookings }

