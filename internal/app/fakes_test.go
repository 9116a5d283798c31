package app_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"staybook/internal/domain"
)

// fakeStore is an in-memory domain.Store shared by the service tests.
// WithTx just runs fn; transactional isolation is covered by the mysql
// integration tests.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	hotels   map[int64]domain.Hotel
	rooms    map[int64]domain.Room
	bookings map[int64]domain.Booking
	payments map[int64]domain.Payment
	reviews  map[int64]domain.Review
	users    map[int64]domain.User

	// when set, the named call returns this error once
	failCreateBooking error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hotels:   map[int64]domain.Hotel{},
		rooms:    map[int64]domain.Room{},
		bookings: map[int64]domain.Booking{},
		payments: map[int64]domain.Payment{},
		reviews:  map[int64]domain.Review{},
		users:    map[int64]domain.User{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---- hotels ----

func (f *fakeStore) Create(ctx context.Context, h *domain.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h.ID = f.id()
	f.hotels[h.ID] = *h
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hotels[id]
	if !ok || h.Deleted() {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeStore) List(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.Hotel
	for _, h := range f.hotels {
		if h.Deleted() {
			continue
		}
		if q.City != nil && h.City != *q.City {
			continue
		}
		if q.Country != nil && h.Country != *q.Country {
			continue
		}
		items = append(items, h)
	}
	return domain.HotelsPage{Items: items, Total: len(items)}, nil
}

func (f *fakeStore) Update(ctx context.Context, h domain.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	f.hotels[h.ID] = h
	return nil
}

func (f *fakeStore) ExistsByNameCity(ctx context.Context, name, city string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.hotels {
		if !h.Deleted() && h.Name == name && h.City == city {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hotels[id]
	if !ok || h.Deleted() {
		return domain.ErrNotFound
	}
	now := time.Now()
	h.DeletedAt = &now
	f.hotels[id] = h
	for rid, r := range f.rooms {
		if r.HotelID != id || r.Deleted() {
			continue
		}
		r.DeletedAt = &now
		f.rooms[rid] = r
		for bid, b := range f.bookings {
			if b.RoomID == rid && !b.Deleted() {
				b.DeletedAt = &now
				f.bookings[bid] = b
			}
		}
	}
	return nil
}

func (f *fakeStore) HardDelete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	for rid, r := range f.rooms {
		if r.HotelID != id {
			continue
		}
		for bid, b := range f.bookings {
			if b.RoomID == rid {
				delete(f.bookings, bid)
			}
		}
		delete(f.rooms, rid)
	}
	for vid, rv := range f.reviews {
		if rv.HotelID == id {
			delete(f.reviews, vid)
		}
	}
	delete(f.hotels, id)
	return nil
}

// ---- rooms ----

func (f *fakeStore) CreateRoom(ctx context.Context, r *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.rooms {
		if ex.HotelID == r.HotelID && ex.RoomNumber == r.RoomNumber {
			return domain.ErrDuplicateRoomNumber
		}
	}
	r.ID = f.id()
	f.rooms[r.ID] = *r
	return nil
}

func (f *fakeStore) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok || r.Deleted() {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) GetRoomForUpdate(ctx context.Context, id int64) (domain.Room, error) {
	return f.GetRoom(ctx, id)
}

func (f *fakeStore) ListRoomsByHotel(ctx context.Context, hotelID int64, pg domain.PageQuery) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Room
	for _, r := range f.rooms {
		if r.HotelID == hotelID && !r.Deleted() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateRoom(ctx context.Context, r domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.rooms[r.ID] = r
	return nil
}

func (f *fakeStore) SoftDeleteRoomWithBookings(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok || r.Deleted() {
		return domain.ErrNotFound
	}
	now := time.Now()
	r.DeletedAt = &now
	f.rooms[id] = r
	for bid, b := range f.bookings {
		if b.RoomID == id && !b.Deleted() {
			b.DeletedAt = &now
			f.bookings[bid] = b
		}
	}
	return nil
}

// ---- bookings ----

func (f *fakeStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failCreateBooking; err != nil {
		f.failCreateBooking = nil
		return err
	}
	b.ID = f.id()
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeStore) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Deleted() {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) UpdateBooking(ctx context.Context, b domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[b.ID]; !ok {
		return domain.ErrNotFound
	}
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeStore) ListBookingsByUser(ctx context.Context, userID int64, pg domain.PageQuery) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.UserID == userID && !b.Deleted() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBookingsByRoom(ctx context.Context, roomID int64, pg domain.PageQuery) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.RoomID == roomID && !b.Deleted() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.RoomID != roomID || b.ID == excludeID || !b.Active() {
			continue
		}
		if b.Overlaps(checkIn, checkOut) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveBookingIDs(ctx context.Context, roomID int64, now time.Time) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for _, b := range f.bookings {
		if b.RoomID == roomID && b.Active() && b.CheckOut.After(now) {
			out = append(out, b.ID)
		}
	}
	return out, nil
}

func (f *fakeStore) HasCompletedStay(ctx context.Context, userID, hotelID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.UserID != userID || b.Deleted() || b.Status != domain.BookingCompleted {
			continue
		}
		if r, ok := f.rooms[b.RoomID]; ok && r.HotelID == hotelID {
			return true, nil
		}
	}
	return false, nil
}

// ---- payments ----

func (f *fakeStore) CreatePayment(ctx context.Context, p *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.payments {
		if ex.BookingID == p.BookingID {
			return domain.ErrDuplicatePayment
		}
	}
	p.ID = f.id()
	f.payments[p.ID] = *p
	return nil
}

func (f *fakeStore) GetPayment(ctx context.Context, id int64) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GetPaymentByBooking(ctx context.Context, bookingID int64) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			return p, nil
		}
	}
	return domain.Payment{}, domain.ErrNotFound
}

func (f *fakeStore) UpdatePayment(ctx context.Context, p domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[p.ID]; !ok {
		return domain.ErrNotFound
	}
	f.payments[p.ID] = p
	return nil
}

// ---- reviews ----

func (f *fakeStore) CreateReview(ctx context.Context, r *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.id()
	r.CreatedAt = time.Now()
	f.reviews[r.ID] = *r
	return nil
}

func (f *fakeStore) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok || rv.Deleted() {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, nil
}

func (f *fakeStore) ListReviewsByHotel(ctx context.Context, hotelID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, rv := range f.reviews {
		if rv.HotelID == hotelID && !rv.Deleted() {
			out = append(out, rv)
		}
	}
	return domain.ReviewsPage{Items: out, Total: len(out)}, nil
}

func (f *fakeStore) ExistsLiveReview(ctx context.Context, userID, hotelID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rv := range f.reviews {
		if rv.UserID == userID && rv.HotelID == hotelID && !rv.Deleted() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SoftDeleteReview(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok || rv.Deleted() {
		return domain.ErrNotFound
	}
	now := time.Now()
	rv.DeletedAt = &now
	f.reviews[id] = rv
	return nil
}

// ---- users ----

func (f *fakeStore) CreateUser(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.users {
		if ex.Email == u.Email && !ex.Deleted() {
			return domain.ErrEmailTaken
		}
	}
	u.ID = f.id()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Deleted() {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && !u.Deleted() {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// fakeCache round-trips values through JSON, like the redis adapter.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = raw
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	return nil
}

// fakeMailer fails the first failures sends, then succeeds.
type fakeMailer struct {
	mu       sync.Mutex
	failures int
	err      error
	sent     []string // recipient per successful send
	attempts int
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.failures > 0 {
		m.failures--
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

type fakeGateway struct {
	tx        domain.GatewayTransaction
	verifyErr error
	refundErr error
	refunded  []string
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, txID string) (domain.GatewayTransaction, error) {
	if g.verifyErr != nil {
		return domain.GatewayTransaction{}, g.verifyErr
	}
	return g.tx, nil
}

func (g *fakeGateway) Refund(ctx context.Context, txID string) error {
	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunded = append(g.refunded, txID)
	return nil
}
