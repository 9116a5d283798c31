package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus int

const (
	BookingPending BookingStatus = iota
	BookingConfirmed
	BookingCompleted
	BookingCancelled
)

func (s BookingStatus) String() string {
	switch s {
	case BookingPending:
		return "pending"
	case BookingConfirmed:
		return "confirmed"
	case BookingCompleted:
		return "completed"
	case BookingCancelled:
		return "cancelled"
	}
	return "unknown"
}

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch s {
	case "pending":
		return BookingPending, true
	case "confirmed":
		return BookingConfirmed, true
	case "completed":
		return BookingCompleted, true
	case "cancelled":
		return BookingCancelled, true
	}
	return 0, false
}

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// CanTransition enforces pending -> confirmed -> completed. Cancellation
// goes through the cancel path, never through a status update.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	switch s {
	case BookingPending:
		return to == BookingConfirmed
	case BookingConfirmed:
		return to == BookingCompleted
	}
	return false
}

type Booking struct {
	ID                 int64
	UserID             int64
	RoomID             int64
	CheckIn            time.Time // UTC; check_out strictly after check_in
	CheckOut           time.Time
	TotalPrice         decimal.Decimal
	Status             BookingStatus
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

func (b Booking) Deleted() bool { return b.DeletedAt != nil }

// Overlaps tests the half-open intervals [b.CheckIn, b.CheckOut) and
// [checkIn, checkOut).
func (b Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return checkIn.Before(b.CheckOut) && checkOut.After(b.CheckIn)
}

// Active bookings block availability and room deletion: not soft-deleted
// and not cancelled. Completed stays keep occupying their historical range.
func (b Booking) Active() bool {
	return !b.Deleted() && b.Status != BookingCancelled
}
