package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the relational storage port. WithTx runs fn inside one database
// transaction; methods called with the ctx passed to fn join it.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Hotels
	Create(ctx context.Context, h *Hotel) error
	Get(ctx context.Context, id int64) (Hotel, error)
	List(ctx context.Context, q HotelsQuery) (HotelsPage, error)
	Update(ctx context.Context, h Hotel) error
	ExistsByNameCity(ctx context.Context, name, city string) (bool, error)
	// SoftDelete cascades to the hotel's rooms and their bookings.
	SoftDelete(ctx context.Context, id int64) error
	// HardDelete physically removes the hotel and everything under it.
	HardDelete(ctx context.Context, id int64) error

	// Rooms
	CreateRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id int64) (Room, error)
	// GetRoomForUpdate locks the room row for the duration of the enclosing
	// transaction; callers must be inside WithTx.
	GetRoomForUpdate(ctx context.Context, id int64) (Room, error)
	ListRoomsByHotel(ctx context.Context, hotelID int64, pg PageQuery) ([]Room, error)
	UpdateRoom(ctx context.Context, r Room) error
	SoftDeleteRoomWithBookings(ctx context.Context, id int64) error

	// Bookings
	CreateBooking(ctx context.Context, b *Booking) error
	GetBooking(ctx context.Context, id int64) (Booking, error)
	UpdateBooking(ctx context.Context, b Booking) error
	ListBookingsByUser(ctx context.Context, userID int64, pg PageQuery) ([]Booking, error)
	ListBookingsByRoom(ctx context.Context, roomID int64, pg PageQuery) ([]Booking, error)
	// ListOverlapping returns active bookings on the room whose half-open
	// range intersects [checkIn, checkOut), excluding excludeID when > 0.
	ListOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) ([]Booking, error)
	// ActiveBookingIDs returns ids of active bookings on the room whose
	// check-out is still in the future.
	ActiveBookingIDs(ctx context.Context, roomID int64, now time.Time) ([]int64, error)
	// HasCompletedStay reports whether the user has a live, completed
	// booking in any room of the hotel.
	HasCompletedStay(ctx context.Context, userID, hotelID int64) (bool, error)

	// Payments
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id int64) (Payment, error)
	GetPaymentByBooking(ctx context.Context, bookingID int64) (Payment, error)
	UpdatePayment(ctx context.Context, p Payment) error

	// Reviews
	CreateReview(ctx context.Context, r *Review) error
	GetReview(ctx context.Context, id int64) (Review, error)
	ListReviewsByHotel(ctx context.Context, hotelID int64, pg PageQuery) (ReviewsPage, error)
	ExistsLiveReview(ctx context.Context, userID, hotelID int64) (bool, error)
	SoftDeleteReview(ctx context.Context, id int64) error

	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// DelPrefix drops every key under the given prefix.
	DelPrefix(ctx context.Context, prefix string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// GatewayTransaction is the gateway's view of a charge, fetched when a
// webhook event is verified.
type GatewayTransaction struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Captured bool
}

type PaymentGateway interface {
	VerifyTransaction(ctx context.Context, txID string) (GatewayTransaction, error)
	Refund(ctx context.Context, txID string) error
}

// Read models & queries

type HotelsQuery struct {
	City, Country *string
	Limit         int
	Offset        int
}

type PageQuery struct {
	Limit  int
	Offset int
}

type HotelsPage struct {
	Items []Hotel
	Total int
}

type ReviewsPage struct {
	Items []Review
	Total int
}
