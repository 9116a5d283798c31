package domain

import "time"

type Hotel struct {
	ID        int64
	Name      string
	Address   string
	City      string
	Country   string
	Rating    float64 // 0..5
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (h Hotel) Deleted() bool { return h.DeletedAt != nil }
