package memory

import (
	"context"
	"sort"
	"sync"

	domainlistings "findy/internal/domain/listings"
	domainreviews "findy/internal/domain/reviews"
)

// ReviewRepository stores reviews in memory with (listing, user) uniqueness.
type ReviewRepository struct {
	mu    sync.RWMutex
	byID  map[domainreviews.ReviewID]*domainreviews.Review
	pairs map[string]struct{}
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		byID:  make(map[domainreviews.ReviewID]*domainreviews.Review),
		pairs: make(map[string]struct{}),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	key := string(review.ListingID) + "|" + string(review.UserID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pairs[key]; ok {
		return domainreviews.ErrAlreadyReviewed
	}
	r.pairs[key] = struct{}{}
	copyReview := *review
	r.byID[review.ID] = &copyReview
	return nil
}

func (r *ReviewRepository) ListForListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*domainreviews.Review
	for _, review := range r.byID {
		if review.ListingID == listingID {
			copyReview := *review
			items = append(items, &copyReview)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
