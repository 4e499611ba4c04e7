package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainlistings "findy/internal/domain/listings"
	domainreviews "findy/internal/domain/reviews"
	domainuser "findy/internal/domain/user"
)

// Service creates reviews and keeps the listing's denormalized rating in
// step with the review rows.
type Service struct {
	Reviews  domainreviews.Repository
	Listings domainlistings.Repository
	Logger   *slog.Logger
}

type CreateParams struct {
	ListingID domainlistings.ListingID
	UserID    domainuser.ID
	Rating    int
	Comment   string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainreviews.Review, error) {
	if _, err := s.Listings.ByID(ctx, params.ListingID); err != nil {
		return nil, err
	}
	review, err := domainreviews.NewReview(domainreviews.CreateParams{
		ID:        domainreviews.ReviewID(uuid.NewString()),
		ListingID: params.ListingID,
		UserID:    params.UserID,
		Rating:    params.Rating,
		Comment:   params.Comment,
		Now:       time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	if err := s.recomputeRating(ctx, params.ListingID); err != nil && s.Logger != nil {
		s.Logger.Warn("listing rating update failed", "listing_id", params.ListingID, "error", err)
	}
	return review, nil
}

// ListForListing returns reviews newest first along with the average rating.
func (s *Service) ListForListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, float64, error) {
	items, err := s.Reviews.ListForListing(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	return items, domainreviews.Average(items), nil
}

func (s *Service) recomputeRating(ctx context.Context, listingID domainlistings.ListingID) error {
	items, err := s.Reviews.ListForListing(ctx, listingID)
	if err != nil {
		return err
	}
	avg := domainreviews.Average(items)
	err = s.Listings.UpdateRating(ctx, listingID, avg, len(items))
	if errors.Is(err, domainlistings.ErrNotFound) {
		return nil
	}
	return err
}
