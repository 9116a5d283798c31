package domain

import "time"

type Review struct {
	ID        int64
	UserID    int64
	HotelID   int64
	Rating    int // 1..5
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (r Review) Deleted() bool { return r.DeletedAt != nil }
