package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"staybook/internal/clock"
	"staybook/internal/domain"
)

type PaymentService struct {
	store    domain.Store
	gateway  domain.PaymentGateway
	notifier *Notifier
	clock    clock.Clock
	log      zerolog.Logger
}

func NewPaymentService(store domain.Store, gateway domain.PaymentGateway, notifier *Notifier, clk clock.Clock, log zerolog.Logger) *PaymentService {
	return &PaymentService{store: store, gateway: gateway, notifier: notifier, clock: clk, log: log}
}

type CreatePaymentInput struct {
	BookingID int64
	Currency  string
	Method    string
}

// Create opens a pending payment for the booking's current total. A booking
// carries at most one payment.
func (s *PaymentService) Create(ctx context.Context, in CreatePaymentInput) (domain.Payment, error) {
	b, err := s.store.GetBooking(ctx, in.BookingID)
	if err != nil {
		return domain.Payment{}, err
	}
	if b.Status == domain.BookingCancelled {
		return domain.Payment{}, domain.ErrBookingNotEditable
	}
	p := domain.Payment{
		BookingID:     b.ID,
		Amount:        b.TotalPrice,
		Currency:      in.Currency,
		Status:        domain.PaymentPending,
		Method:        in.Method,
		TransactionID: uuid.NewString(),
	}
	if err := s.store.CreatePayment(ctx, &p); err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (domain.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

func (s *PaymentService) GetByBooking(ctx context.Context, bookingID int64) (domain.Payment, error) {
	return s.store.GetPaymentByBooking(ctx, bookingID)
}

type WebhookEvent struct {
	PaymentID     int64
	TransactionID string
	Succeeded     bool
	Amount        decimal.Decimal
}

// HandleWebhook settles a pending payment from a gateway event. The event is
// verified against the gateway before anything is written. On success the
// booking is confirmed and a confirmation email is enqueued fire-and-forget;
// email failure can never roll the payment back.
func (s *PaymentService) HandleWebhook(ctx context.Context, ev WebhookEvent) (domain.Payment, error) {
	p, err := s.store.GetPayment(ctx, ev.PaymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if p.Settled() {
		return domain.Payment{}, domain.ErrPaymentAlreadySettled
	}

	if !ev.Succeeded {
		p.Status = domain.PaymentFailed
		p.TransactionID = ev.TransactionID
		if err := s.store.UpdatePayment(ctx, p); err != nil {
			return domain.Payment{}, err
		}
		s.log.Warn().Int64("payment_id", p.ID).Msg("payment failed")
		return p, nil
	}

	tx, err := s.gateway.VerifyTransaction(ctx, ev.TransactionID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("verify transaction: %w", err)
	}
	if !tx.Captured || !tx.Amount.Equal(p.Amount) {
		return domain.Payment{}, domain.ErrGatewayMismatch
	}

	now := s.clock.Now()
	var booking domain.Booking
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		p.Status = domain.PaymentSucceeded
		p.TransactionID = ev.TransactionID
		p.PaidAt = &now
		if err := s.store.UpdatePayment(ctx, p); err != nil {
			return err
		}
		b, err := s.store.GetBooking(ctx, p.BookingID)
		if err != nil {
			return err
		}
		if b.Status == domain.BookingPending {
			b.Status = domain.BookingConfirmed
			if err := s.store.UpdateBooking(ctx, b); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.log.Info().Int64("payment_id", p.ID).Int64("booking_id", booking.ID).Msg("payment succeeded")
	if s.notifier != nil {
		s.notifier.PaymentSucceeded(PaymentEvent{
			PaymentID:     p.ID,
			BookingID:     booking.ID,
			UserID:        booking.UserID,
			Amount:        p.Amount,
			TransactionID: p.TransactionID,
		})
	}
	return p, nil
}

// Refund flips a succeeded payment to Refunded after the gateway accepts the
// refund. Cancellation never calls this implicitly.
func (s *PaymentService) Refund(ctx context.Context, paymentID int64) (domain.Payment, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if p.Status != domain.PaymentSucceeded {
		return domain.Payment{}, domain.ErrPaymentAlreadySettled
	}
	if err := s.gateway.Refund(ctx, p.TransactionID); err != nil {
		return domain.Payment{}, fmt.Errorf("gateway refund: %w", err)
	}
	p.Status = domain.PaymentRefunded
	if err := s.store.UpdatePayment(ctx, p); err != nil {
		return domain.Payment{}, err
	}
	s.log.Info().Int64("payment_id", p.ID).Msg("payment refunded")
	return p, nil
}
