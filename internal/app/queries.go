package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staybook/internal/domain"
)

// QueryService serves the cacheable read paths. Writes invalidate by key
// prefix; see the write services.
type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(store domain.Store, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := fmt.Sprintf("hotel:%d", id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *QueryService) ListHotels(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	key := fmt.Sprintf("hotels:%s:%s:%d:%d", strOr(q.City), strOr(q.Country), q.Limit, q.Offset)
	var page domain.HotelsPage
	if ok, _ := s.cache.Get(ctx, key, &page); ok {
		return page, nil
	}
	page, err := s.store.List(ctx, q)
	if err != nil {
		return domain.HotelsPage{}, err
	}
	s.setGuarded(ctx, key, page)
	return page, nil
}

func (s *QueryService) ListRooms(ctx context.Context, hotelID int64, pg domain.PageQuery) ([]domain.Room, error) {
	key := fmt.Sprintf("rooms:%d:%d:%d", hotelID, pg.Limit, pg.Offset)
	var rooms []domain.Room
	if ok, _ := s.cache.Get(ctx, key, &rooms); ok {
		return rooms, nil
	}
	rooms, err := s.store.ListRoomsByHotel(ctx, hotelID, pg)
	if err != nil {
		return nil, err
	}
	s.setGuarded(ctx, key, rooms)
	return rooms, nil
}

func (s *QueryService) ListReviews(ctx context.Context, hotelID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	key := fmt.Sprintf("reviews:%d:%d:%d", hotelID, pg.Limit, pg.Offset)
	var page domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &page); ok {
		return page, nil
	}
	page, err := s.store.ListReviewsByHotel(ctx, hotelID, pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	// copy slice to avoid aliasing the store's backing array
	cp := domain.ReviewsPage{Total: page.Total}
	if n := len(page.Items); n > 0 {
		cp.Items = make([]domain.Review, n)
		copy(cp.Items, page.Items)
	}
	s.setGuarded(ctx, key, cp)
	return cp, nil
}

func (s *QueryService) ListRoomBookings(ctx context.Context, roomID int64, pg domain.PageQuery) ([]domain.Booking, error) {
	key := fmt.Sprintf("bookings:room:%d:%d:%d", roomID, pg.Limit, pg.Offset)
	var bs []domain.Booking
	if ok, _ := s.cache.Get(ctx, key, &bs); ok {
		return bs, nil
	}
	bs, err := s.store.ListBookingsByRoom(ctx, roomID, pg)
	if err != nil {
		return nil, err
	}
	s.setGuarded(ctx, key, bs)
	return bs, nil
}

// ListUserBookings is uncached: a user's own list must reflect their writes
// immediately.
func (s *QueryService) ListUserBookings(ctx context.Context, userID int64, pg domain.PageQuery) ([]domain.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID, pg)
}

// setGuarded skips caching oversized values.
func (s *QueryService) setGuarded(ctx context.Context, key string, v any) {
	if b, _ := json.Marshal(v); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	}
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
