package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"staybook/internal/clock"
	"staybook/internal/domain"
)

// cancellationWindow is the minimum lead time before check-in for a
// cancellation to be accepted.
const cancellationWindow = 24 * time.Hour

type BookingService struct {
	store domain.Store
	cache domain.Cache
	clock clock.Clock
	log   zerolog.Logger
}

func NewBookingService(store domain.Store, cache domain.Cache, clk clock.Clock, log zerolog.Logger) *BookingService {
	return &BookingService{store: store, cache: cache, clock: clk, log: log}
}

// IsAvailable reports whether the room is free for [checkIn, checkOut).
// excludeID removes one booking from the conflict set, used when
// re-validating an existing booking's new dates.
func (s *BookingService) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	if !checkOut.After(checkIn) {
		return false, domain.ErrInvalidDateRange
	}
	conflicts, err := s.store.ListOverlapping(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

type PriceQuote struct {
	Nights      int
	NightlyRate decimal.Decimal
	Total       decimal.Decimal
}

// Quote computes the price for a stay: whole nights (fractional days
// truncate) times the room's current nightly rate.
func (s *BookingService) Quote(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (PriceQuote, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return PriceQuote{}, err
	}
	return quoteFor(room, checkIn, checkOut)
}

func quoteFor(room domain.Room, checkIn, checkOut time.Time) (PriceQuote, error) {
	nights := wholeNights(checkIn, checkOut)
	if nights < 1 {
		return PriceQuote{}, domain.ErrInvalidDateRange
	}
	return PriceQuote{
		Nights:      nights,
		NightlyRate: room.PricePerNight,
		Total:       room.PricePerNight.Mul(decimal.NewFromInt(int64(nights))),
	}, nil
}

func wholeNights(checkIn, checkOut time.Time) int {
	if !checkOut.After(checkIn) {
		return 0
	}
	return int(checkOut.Sub(checkIn) / (24 * time.Hour))
}

type CreateBookingInput struct {
	UserID   int64
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
}

// Create books the room for the half-open range [CheckIn, CheckOut).
// The room lock, overlap check, and insert run in one transaction, so two
// concurrent requests for the same room serialize instead of double-booking.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if !in.CheckOut.After(in.CheckIn) {
		return domain.Booking{}, domain.ErrInvalidDateRange
	}

	var booking domain.Booking
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		room, err := s.store.GetRoomForUpdate(ctx, in.RoomID)
		if err != nil {
			return err
		}
		free, err := s.IsAvailable(ctx, in.RoomID, in.CheckIn, in.CheckOut, 0)
		if err != nil {
			return err
		}
		if !free {
			return domain.ErrRoomUnavailable
		}
		quote, err := quoteFor(room, in.CheckIn, in.CheckOut)
		if err != nil {
			return err
		}
		booking = domain.Booking{
			UserID:     in.UserID,
			RoomID:     in.RoomID,
			CheckIn:    in.CheckIn.UTC(),
			CheckOut:   in.CheckOut.UTC(),
			TotalPrice: quote.Total,
			Status:     domain.BookingPending,
		}
		return s.store.CreateBooking(ctx, &booking)
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.invalidateRoom(ctx, in.RoomID)
	s.log.Info().
		Int64("booking_id", booking.ID).
		Int64("room_id", in.RoomID).
		Str("total", booking.TotalPrice.StringFixed(2)).
		Msg("booking created")
	return booking, nil
}

type UpdateBookingInput struct {
	ID       int64
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   *domain.BookingStatus
}

// Update applies a partial change to dates and/or status. Bookings in a
// terminal state are rejected. A date change re-runs the availability check
// excluding the booking itself and recomputes the total price.
func (s *BookingService) Update(ctx context.Context, in UpdateBookingInput) (domain.Booking, error) {
	var booking domain.Booking
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.store.GetBooking(ctx, in.ID)
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			return domain.ErrBookingNotEditable
		}

		if in.Status != nil && *in.Status != b.Status {
			if *in.Status == domain.BookingCancelled {
				// Cancellation has its own rules; force it through Cancel.
				return domain.ErrInvalidTransition
			}
			if !b.Status.CanTransition(*in.Status) {
				return domain.ErrInvalidTransition
			}
			b.Status = *in.Status
		}

		checkIn, checkOut := b.CheckIn, b.CheckOut
		if in.CheckIn != nil {
			checkIn = in.CheckIn.UTC()
		}
		if in.CheckOut != nil {
			checkOut = in.CheckOut.UTC()
		}
		if !checkIn.Equal(b.CheckIn) || !checkOut.Equal(b.CheckOut) {
			if !checkOut.After(checkIn) {
				return domain.ErrInvalidDateRange
			}
			room, err := s.store.GetRoomForUpdate(ctx, b.RoomID)
			if err != nil {
				return err
			}
			free, err := s.IsAvailable(ctx, b.RoomID, checkIn, checkOut, b.ID)
			if err != nil {
				return err
			}
			if !free {
				return domain.ErrRoomUnavailable
			}
			quote, err := quoteFor(room, checkIn, checkOut)
			if err != nil {
				return err
			}
			b.CheckIn, b.CheckOut, b.TotalPrice = checkIn, checkOut, quote.Total
		}

		if err := s.store.UpdateBooking(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.invalidateRoom(ctx, booking.RoomID)
	return booking, nil
}

// Cancel moves the booking to Cancelled. Rejected for terminal bookings and
// inside the 24-hour window before check-in. The payment, if any, is left
// untouched; refunds run through the payment workflow.
func (s *BookingService) Cancel(ctx context.Context, id int64, reason *string) (domain.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	switch b.Status {
	case domain.BookingCancelled:
		return domain.Booking{}, domain.ErrAlreadyCancelled
	case domain.BookingCompleted:
		return domain.Booking{}, domain.ErrBookingNotEditable
	}
	if s.clock.Now().Add(cancellationWindow).After(b.CheckIn) {
		return domain.Booking{}, domain.ErrCancellationClosed
	}

	b.Status = domain.BookingCancelled
	b.CancellationReason = reason
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return domain.Booking{}, err
	}

	s.invalidateRoom(ctx, b.RoomID)
	s.log.Info().Int64("booking_id", b.ID).Msg("booking cancelled")
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (domain.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

func (s *BookingService) invalidateRoom(ctx context.Context, roomID int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DelPrefix(ctx, fmt.Sprintf("bookings:room:%d:", roomID))
}
