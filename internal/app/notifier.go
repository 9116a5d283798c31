package app

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

const (
	mailAttempts    = 3
	templateExpiry  = 10 * time.Minute
	paymentTemplate = "payment_succeeded.html"
)

// PaymentEvent is what the payment workflow hands to the notifier after a
// charge succeeds.
type PaymentEvent struct {
	PaymentID     int64
	BookingID     int64
	UserID        int64
	Amount        decimal.Decimal
	TransactionID string
}

// Notifier sends booking emails fire-and-forget. Jobs run on a background
// context, detached from the request that produced them: a client disconnect
// never aborts a queued retry loop. Delivery is best-effort; the queue is
// in-memory and lost on restart.
type Notifier struct {
	store  domain.Store
	mailer domain.Mailer
	tmpl   *templateCache
	log    zerolog.Logger

	jobs    chan PaymentEvent
	workers int64
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewNotifier(store domain.Store, mailer domain.Mailer, templateDir string, workers, queueSize int, log zerolog.Logger) *Notifier {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Notifier{
		store:   store,
		mailer:  mailer,
		tmpl:    newTemplateCache(templateDir),
		log:     log,
		jobs:    make(chan PaymentEvent, queueSize),
		workers: int64(workers),
		done:    make(chan struct{}),
	}
}

// Start launches the dispatch loop. Must be called once before enqueueing.
func (n *Notifier) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	go n.dispatch(ctx)
}

// Stop drains nothing: queued jobs not yet picked up are dropped, matching
// the no-durability contract.
func (n *Notifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	<-n.done
}

// PaymentSucceeded enqueues without blocking; when the queue is full the
// event is dropped and logged, never pushed back on the payment flow.
func (n *Notifier) PaymentSucceeded(ev PaymentEvent) {
	select {
	case n.jobs <- ev:
	default:
		n.log.Warn().Int64("payment_id", ev.PaymentID).Msg("notify queue full, event dropped")
	}
}

func (n *Notifier) dispatch(ctx context.Context) {
	defer close(n.done)

	sem := semaphore.NewWeighted(n.workers)
	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case ev := <-n.jobs:
			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return
			}
			wg.Add(1)
			go func(ev PaymentEvent) {
				defer wg.Done()
				defer sem.Release(1)
				n.handle(ctx, ev)
			}(ev)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, ev PaymentEvent) {
	user, err := n.store.GetUser(ctx, ev.UserID)
	if err != nil {
		n.log.Warn().Int64("user_id", ev.UserID).Err(err).Msg("notify: user missing, dropping event")
		return
	}
	booking, err := n.store.GetBooking(ctx, ev.BookingID)
	if err != nil {
		n.log.Warn().Int64("booking_id", ev.BookingID).Err(err).Msg("notify: booking missing, dropping event")
		return
	}

	body, err := n.tmpl.render(paymentTemplate, map[string]any{
		"Name":          user.FullName,
		"BookingID":     booking.ID,
		"CheckIn":       booking.CheckIn.Format("2006-01-02"),
		"CheckOut":      booking.CheckOut.Format("2006-01-02"),
		"Amount":        ev.Amount.StringFixed(2),
		"TransactionID": ev.TransactionID,
	})
	if err != nil {
		n.log.Error().Err(err).Msg("notify: template render failed")
		return
	}

	subject := fmt.Sprintf("Payment received for booking #%d", booking.ID)
	for attempt := 1; attempt <= mailAttempts; attempt++ {
		err = n.mailer.Send(ctx, user.Email, subject, body)
		if err == nil {
			observability.ObserveEmail("sent")
			n.log.Info().Int64("booking_id", booking.ID).Int("attempt", attempt).Msg("confirmation email sent")
			return
		}
		observability.ObserveEmail("retry")
		n.log.Warn().Int64("booking_id", booking.ID).Int("attempt", attempt).Err(err).Msg("email send failed")
		if attempt < mailAttempts {
			if !sleepCtx(ctx, time.Duration(1<<attempt)*time.Second) {
				return
			}
		}
	}
	// exhausted; delivery failure must never surface to the payment flow
	observability.ObserveEmail("abandoned")
	n.log.Error().Int64("booking_id", booking.ID).Err(err).Msg("confirmation email abandoned")
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// templateCache parses templates from disk and keeps them for ten minutes.
type templateCache struct {
	dir string

	mu     sync.Mutex
	parsed map[string]*template.Template
	loaded map[string]time.Time
}

func newTemplateCache(dir string) *templateCache {
	return &templateCache{
		dir:    dir,
		parsed: make(map[string]*template.Template),
		loaded: make(map[string]time.Time),
	}
}

func (c *templateCache) render(name string, data any) (string, error) {
	t, err := c.get(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *templateCache) get(name string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.parsed[name]; ok && time.Since(c.loaded[name]) < templateExpiry {
		return t, nil
	}
	raw, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", name, err)
	}
	t, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	c.parsed[name] = t
	c.loaded[name] = time.Now()
	return t, nil
}
