package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"staybook/internal/domain"
)

type ReviewService struct {
	store domain.Store
	cache domain.Cache
	log   zerolog.Logger
}

func NewReviewService(store domain.Store, cache domain.Cache, log zerolog.Logger) *ReviewService {
	return &ReviewService{store: store, cache: cache, log: log}
}

type CreateReviewInput struct {
	UserID  int64
	HotelID int64
	Rating  int // 1..5
	Comment string
}

// Create accepts one live review per user and hotel, and only from users
// with a completed stay there. Both checks run in the same transaction as
// the insert.
func (s *ReviewService) Create(ctx context.Context, in CreateReviewInput) (domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, domain.ErrInvalidRating
	}
	var review domain.Review
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Get(ctx, in.HotelID); err != nil {
			return err
		}
		stayed, err := s.store.HasCompletedStay(ctx, in.UserID, in.HotelID)
		if err != nil {
			return err
		}
		if !stayed {
			return domain.ErrReviewNotEligible
		}
		dup, err := s.store.ExistsLiveReview(ctx, in.UserID, in.HotelID)
		if err != nil {
			return err
		}
		if dup {
			return domain.ErrDuplicateReview
		}
		review = domain.Review{
			UserID:  in.UserID,
			HotelID: in.HotelID,
			Rating:  in.Rating,
			Comment: in.Comment,
		}
		return s.store.CreateReview(ctx, &review)
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.invalidate(ctx, in.HotelID)
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	rv, err := s.store.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.SoftDeleteReview(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, rv.HotelID)
	return nil
}

func (s *ReviewService) invalidate(ctx context.Context, hotelID int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DelPrefix(ctx, fmt.Sprintf("reviews:%d:", hotelID))
}
