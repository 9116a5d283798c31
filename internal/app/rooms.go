package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"staybook/internal/clock"
	"staybook/internal/domain"
)

type RoomService struct {
	store domain.Store
	cache domain.Cache
	clock clock.Clock
	log   zerolog.Logger
}

func NewRoomService(store domain.Store, cache domain.Cache, clk clock.Clock, log zerolog.Logger) *RoomService {
	return &RoomService{store: store, cache: cache, clock: clk, log: log}
}

type CreateRoomInput struct {
	HotelID       int64
	RoomNumber    string
	Type          domain.RoomType
	PricePerNight decimal.Decimal
	Capacity      int
}

func (s *RoomService) Create(ctx context.Context, in CreateRoomInput) (domain.Room, error) {
	if _, err := s.store.Get(ctx, in.HotelID); err != nil {
		return domain.Room{}, err
	}
	room := domain.Room{
		HotelID:       in.HotelID,
		RoomNumber:    in.RoomNumber,
		Type:          in.Type,
		PricePerNight: in.PricePerNight,
		Capacity:      in.Capacity,
	}
	if err := s.store.CreateRoom(ctx, &room); err != nil {
		return domain.Room{}, err
	}
	s.invalidateHotelRooms(ctx, in.HotelID)
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, id int64) (domain.Room, error) {
	return s.store.GetRoom(ctx, id)
}

type UpdateRoomInput struct {
	ID            int64
	RoomNumber    *string
	Type          *domain.RoomType
	PricePerNight *decimal.Decimal
	Capacity      *int
}

// Update changes room attributes. A price change only affects future
// bookings; existing totals are frozen until their dates change.
func (s *RoomService) Update(ctx context.Context, in UpdateRoomInput) (domain.Room, error) {
	room, err := s.store.GetRoom(ctx, in.ID)
	if err != nil {
		return domain.Room{}, err
	}
	if in.RoomNumber != nil {
		room.RoomNumber = *in.RoomNumber
	}
	if in.Type != nil {
		room.Type = *in.Type
	}
	if in.PricePerNight != nil {
		room.PricePerNight = *in.PricePerNight
	}
	if in.Capacity != nil {
		room.Capacity = *in.Capacity
	}
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	s.invalidateHotelRooms(ctx, room.HotelID)
	return room, nil
}

// Delete soft-deletes the room and all its bookings. With force=false it
// refuses while any active booking has a future check-out, reporting the
// blocking ids.
func (s *RoomService) Delete(ctx context.Context, id int64, force bool) error {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if !force {
		ids, err := s.store.ActiveBookingIDs(ctx, id, s.clock.Now())
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			return &domain.ActiveBookingsError{RoomID: id, BookingIDs: ids}
		}
	}
	if err := s.store.SoftDeleteRoomWithBookings(ctx, id); err != nil {
		return err
	}
	s.invalidateHotelRooms(ctx, room.HotelID)
	if s.cache != nil {
		_ = s.cache.DelPrefix(ctx, fmt.Sprintf("bookings:room:%d:", id))
	}
	s.log.Info().Int64("room_id", id).Bool("force", force).Msg("room deleted")
	return nil
}

func (s *RoomService) invalidateHotelRooms(ctx context.Context, hotelID int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DelPrefix(ctx, fmt.Sprintf("rooms:%d:", hotelID))
}
