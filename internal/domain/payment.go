package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus int

const (
	PaymentPending PaymentStatus = iota
	PaymentSucceeded
	PaymentFailed
	PaymentRefunded
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentPending:
		return "pending"
	case PaymentSucceeded:
		return "succeeded"
	case PaymentFailed:
		return "failed"
	case PaymentRefunded:
		return "refunded"
	}
	return "unknown"
}

type Payment struct {
	ID            int64
	BookingID     int64 // one payment per booking
	Amount        decimal.Decimal
	Currency      string // ISO 4217
	Status        PaymentStatus
	Method        string
	TransactionID string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Settled payments reject further gateway events.
func (p Payment) Settled() bool {
	return p.Status == PaymentSucceeded || p.Status == PaymentRefunded
}
