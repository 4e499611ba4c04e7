package memory

import (
	"context"
	"sort"
	"sync"

	domainlistings "findy/internal/domain/listings"
)

// ListingRepository stores listings in memory. Serves the fixture-data mode
// and tests; the filter semantics mirror the Mongo repository exactly
// because both evaluate the same SearchParams.
type ListingRepository struct {
	mu   sync.RWMutex
	byID map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{byID: make(map[domainlistings.ListingID]*domainlistings.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if listing, ok := r.byID[id]; ok {
		return cloneListing(listing), nil
	}
	return nil, domainlistings.ErrNotFound
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	params = params.Normalized()
	r.mu.RLock()
	var matched []*domainlistings.Listing
	for _, listing := range r.byID {
		if params.Matches(listing) {
			matched = append(matched, cloneListing(listing))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if params.Offset >= len(matched) {
		return []*domainlistings.Listing{}, nil
	}
	matched = matched[params.Offset:]
	if len(matched) > params.Limit {
		matched = matched[:params.Limit]
	}
	return matched, nil
}

func (r *ListingRepository) UpdateRating(ctx context.Context, id domainlistings.ListingID, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.byID[id]
	if !ok {
		return domainlistings.ErrNotFound
	}
	listing.AverageRating = average
	listing.ReviewCount = count
	return nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	if l == nil {
		return nil
	}
	copyListing := *l
	copyListing.Images = append([]string(nil), l.Images...)
	copyListing.Amenities = append([]string(nil), l.Amenities...)
	return &copyListing
}
