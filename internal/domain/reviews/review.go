package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"findy/internal/domain/listings"
	"findy/internal/domain/user"
)

var (
	ErrRatingRange      = errors.New("reviews: rating must be between 1 and 5")
	ErrListingRequired  = errors.New("reviews: listing id is required")
	ErrAlreadyReviewed  = errors.New("reviews: listing already reviewed by this user")
	ErrNotFound         = errors.New("reviews: not found")
)

type ReviewID string

// Review is one user's rating of a listing. One review per (user, listing).
type Review struct {
	ID        ReviewID
	ListingID listings.ListingID
	UserID    user.ID
	Rating    int
	Comment   string
	Helpful   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository persists reviews; Create must reject a duplicate
// (user, listing) pair with ErrAlreadyReviewed.
type Repository interface {
	Create(ctx context.Context, review *Review) error
	ListForListing(ctx context.Context, listingID listings.ListingID) ([]*Review, error)
}

type CreateParams struct {
	ID        ReviewID
	ListingID listings.ListingID
	UserID    user.ID
	Rating    int
	Comment   string
	Now       time.Time
}

func NewReview(params CreateParams) (*Review, error) {
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrRatingRange
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Review{
		ID:        params.ID,
		ListingID: params.ListingID,
		UserID:    params.UserID,
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Average returns the mean rating rounded to one decimal place, or 0 for an
// empty slice.
func Average(items []*Review) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum int
	for _, r := range items {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(items))
	return float64(int(avg*10+0.5)) / 10
}
