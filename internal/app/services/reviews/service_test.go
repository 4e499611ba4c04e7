package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	domainlistings "findy/internal/domain/listings"
	domainreviews "findy/internal/domain/reviews"
	domainuser "findy/internal/domain/user"
	"findy/internal/infra/storage/memory"
)

func newTestService(t *testing.T) (*Service, domainlistings.Repository) {
	t.Helper()
	listings := memory.NewListingRepository()
	return &Service{
		Reviews:  memory.NewReviewRepository(),
		Listings: listings,
	}, listings
}

func seedListing(t *testing.T, repo domainlistings.Repository, id string) *domainlistings.Listing {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          domainlistings.ListingID(id),
		OwnerID:     domainuser.ID("owner-1"),
		Title:       "Sunny room in Indiranagar",
		Description: "2BHK, room available from next month",
		Price:       12000,
		Location:    domainlistings.Location{Longitude: 77.64, Latitude: 12.97},
		Gender:      domainlistings.GenderCoed,
		Now:         time.Now(),
	})
	if err != nil {
		t.Fatalf("new listing: %v", err)
	}
	if err := repo.Save(context.Background(), listing); err != nil {
		t.Fatalf("save listing: %v", err)
	}
	return listing
}

func TestCreateReviewUpdatesListingRating(t *testing.T) {
	svc, listings := newTestService(t)
	ctx := context.Background()
	seedListing(t, listings, "listing-1")

	if _, err := svc.Create(ctx, CreateParams{
		ListingID: "listing-1", UserID: "user-1", Rating: 5, Comment: "great flatmates",
	}); err != nil {
		t.Fatalf("create review: %v", err)
	}
	if _, err := svc.Create(ctx, CreateParams{
		ListingID: "listing-1", UserID: "user-2", Rating: 4,
	}); err != nil {
		t.Fatalf("create second review: %v", err)
	}

	listing, err := listings.ByID(ctx, "listing-1")
	if err != nil {
		t.Fatalf("listing by id: %v", err)
	}
	if listing.AverageRating != 4.5 {
		t.Fatalf("average rating = %v, want 4.5", listing.AverageRating)
	}
	if listing.ReviewCount != 2 {
		t.Fatalf("review count = %d, want 2", listing.ReviewCount)
	}

	items, avg, err := svc.ListForListing(ctx, "listing-1")
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(items) != 2 || avg != 4.5 {
		t.Fatalf("got %d reviews with average %v, want 2 and 4.5", len(items), avg)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	svc, listings := newTestService(t)
	ctx := context.Background()
	seedListing(t, listings, "listing-1")

	cases := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{"unknown listing", CreateParams{ListingID: "nope", UserID: "user-1", Rating: 3}, domainlistings.ErrNotFound},
		{"rating too low", CreateParams{ListingID: "listing-1", UserID: "user-1", Rating: 0}, domainreviews.ErrRatingRange},
		{"rating too high", CreateParams{ListingID: "listing-1", UserID: "user-1", Rating: 6}, domainreviews.ErrRatingRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.params); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateReviewOncePerUser(t *testing.T) {
	svc, listings := newTestService(t)
	ctx := context.Background()
	seedListing(t, listings, "listing-1")

	if _, err := svc.Create(ctx, CreateParams{ListingID: "listing-1", UserID: "user-1", Rating: 4}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	_, err := svc.Create(ctx, CreateParams{ListingID: "listing-1", UserID: "user-1", Rating: 2})
	if !errors.Is(err, domainreviews.ErrAlreadyReviewed) {
		t.Fatalf("err = %v, want ErrAlreadyReviewed", err)
	}

	listing, err := listings.ByID(ctx, "listing-1")
	if err != nil {
		t.Fatalf("listing by id: %v", err)
	}
	if listing.AverageRating != 4 || listing.ReviewCount != 1 {
		t.Fatalf("rating = %v/%d, want 4/1", listing.AverageRating, listing.ReviewCount)
	}
}
