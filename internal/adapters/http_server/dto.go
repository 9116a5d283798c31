package httpserver

import (
	"time"

	"staybook/internal/domain"
)

type hotelDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toHotelDTO(h domain.Hotel) hotelDTO {
	return hotelDTO{
		ID: h.ID, Name: h.Name, Address: h.Address, City: h.City,
		Country: h.Country, Rating: h.Rating,
		CreatedAt: h.CreatedAt, UpdatedAt: h.UpdatedAt,
	}
}

type roomDTO struct {
	ID            int64  `json:"id"`
	HotelID       int64  `json:"hotel_id"`
	RoomNumber    string `json:"room_number"`
	Type          string `json:"type"`
	PricePerNight string `json:"price_per_night"`
	Capacity      int    `json:"capacity"`
}

func toRoomDTO(r domain.Room) roomDTO {
	return roomDTO{
		ID: r.ID, HotelID: r.HotelID, RoomNumber: r.RoomNumber,
		Type: r.Type.String(), PricePerNight: r.PricePerNight.StringFixed(2),
		Capacity: r.Capacity,
	}
}

func toRoomDTOs(rs []domain.Room) []roomDTO {
	out := make([]roomDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRoomDTO(r))
	}
	return out
}

type bookingDTO struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	RoomID             int64     `json:"room_id"`
	CheckIn            time.Time `json:"check_in"`
	CheckOut           time.Time `json:"check_out"`
	TotalPrice         string    `json:"total_price"`
	Status             string    `json:"status"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toBookingDTO(b domain.Booking) bookingDTO {
	return bookingDTO{
		ID: b.ID, UserID: b.UserID, RoomID: b.RoomID,
		CheckIn: b.CheckIn, CheckOut: b.CheckOut,
		TotalPrice: b.TotalPrice.StringFixed(2), Status: b.Status.String(),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

func toBookingDTOs(bs []domain.Booking) []bookingDTO {
	out := make([]bookingDTO, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingDTO(b))
	}
	return out
}

type paymentDTO struct {
	ID            int64      `json:"id"`
	BookingID     int64      `json:"booking_id"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	Method        string     `json:"method"`
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

func toPaymentDTO(p domain.Payment) paymentDTO {
	return paymentDTO{
		ID: p.ID, BookingID: p.BookingID, Amount: p.Amount.StringFixed(2),
		Currency: p.Currency, Status: p.Status.String(), Method: p.Method,
		TransactionID: p.TransactionID, PaidAt: p.PaidAt,
	}
}

type reviewDTO struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	HotelID   int64     `json:"hotel_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewDTO(r domain.Review) reviewDTO {
	return reviewDTO{
		ID: r.ID, UserID: r.UserID, HotelID: r.HotelID,
		Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt,
	}
}

type userDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role)}
}
