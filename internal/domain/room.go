package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomType int

const (
	RoomStandard RoomType = iota
	RoomDeluxe
	RoomSuite
)

func (t RoomType) String() string {
	switch t {
	case RoomStandard:
		return "standard"
	case RoomDeluxe:
		return "deluxe"
	case RoomSuite:
		return "suite"
	}
	return "unknown"
}

func ParseRoomType(s string) (RoomType, bool) {
	switch s {
	case "standard":
		return RoomStandard, true
	case "deluxe":
		return RoomDeluxe, true
	case "suite":
		return RoomSuite, true
	}
	return 0, false
}

type Room struct {
	ID            int64
	HotelID       int64
	RoomNumber    string // unique per hotel
	Type          RoomType
	PricePerNight decimal.Decimal
	Capacity      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

func (r Room) Deleted() bool { return r.DeletedAt != nil }
