package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"staybook/internal/domain"
)

type HotelService struct {
	store domain.Store
	cache domain.Cache
	log   zerolog.Logger
}

func NewHotelService(store domain.Store, cache domain.Cache, log zerolog.Logger) *HotelService {
	return &HotelService{store: store, cache: cache, log: log}
}

type HotelInput struct {
	Name    string
	Address string
	City    string
	Country string
	Rating  float64
}

func (s *HotelService) Create(ctx context.Context, in HotelInput) (domain.Hotel, error) {
	dup, err := s.store.ExistsByNameCity(ctx, in.Name, in.City)
	if err != nil {
		return domain.Hotel{}, err
	}
	if dup {
		return domain.Hotel{}, domain.ErrDuplicateHotel
	}
	h := domain.Hotel{
		Name:    in.Name,
		Address: in.Address,
		City:    in.City,
		Country: in.Country,
		Rating:  in.Rating,
	}
	if err := s.store.Create(ctx, &h); err != nil {
		return domain.Hotel{}, err
	}
	s.invalidateLists(ctx)
	return h, nil
}

type UpdateHotelInput struct {
	ID      int64
	Name    *string
	Address *string
	City    *string
	Country *string
	Rating  *float64
}

func (s *HotelService) Update(ctx context.Context, in UpdateHotelInput) (domain.Hotel, error) {
	h, err := s.store.Get(ctx, in.ID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if in.Name != nil {
		h.Name = *in.Name
	}
	if in.Address != nil {
		h.Address = *in.Address
	}
	if in.City != nil {
		h.City = *in.City
	}
	if in.Country != nil {
		h.Country = *in.Country
	}
	if in.Rating != nil {
		h.Rating = *in.Rating
	}
	if err := s.store.Update(ctx, h); err != nil {
		return domain.Hotel{}, err
	}
	s.invalidateHotel(ctx, h.ID)
	return h, nil
}

// SoftDelete hides the hotel and cascades to its rooms and their bookings.
func (s *HotelService) SoftDelete(ctx context.Context, id int64) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateHotel(ctx, id)
	s.log.Info().Int64("hotel_id", id).Msg("hotel soft-deleted")
	return nil
}

// HardDelete physically removes the hotel with its rooms, bookings, and
// reviews. Kept separate from SoftDelete on purpose; there is no undo.
func (s *HotelService) HardDelete(ctx context.Context, id int64) error {
	if err := s.store.HardDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateHotel(ctx, id)
	s.log.Info().Int64("hotel_id", id).Msg("hotel hard-deleted")
	return nil
}

func (s *HotelService) invalidateHotel(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, fmt.Sprintf("hotel:%d", id))
	_ = s.cache.DelPrefix(ctx, fmt.Sprintf("rooms:%d:", id))
	_ = s.cache.DelPrefix(ctx, fmt.Sprintf("reviews:%d:", id))
	s.invalidateLists(ctx)
}

func (s *HotelService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DelPrefix(ctx, "hotels:")
}
