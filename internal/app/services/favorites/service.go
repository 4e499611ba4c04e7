package favorites

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainfav "findy/internal/domain/favorites"
	domainlistings "findy/internal/domain/listings"
	domainuser "findy/internal/domain/user"
)

// Service keeps each user's saved listings. Adding is idempotent in effect:
// a duplicate add reports the existing state, never a server error.
type Service struct {
	Favorites domainfav.Repository
	Listings  domainlistings.Repository
	Logger    *slog.Logger
}

// Item pairs a favorite with the listing it points to. Listing is nil when
// the listing was removed after being saved.
type Item struct {
	Favorite *domainfav.Favorite
	Listing  *domainlistings.Listing
}

func (s *Service) Add(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID) error {
	if _, err := s.Listings.ByID(ctx, listingID); err != nil {
		return err
	}
	fav := &domainfav.Favorite{
		ID:        domainfav.FavoriteID(uuid.NewString()),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	return s.Favorites.Create(ctx, fav)
}

func (s *Service) Remove(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID) error {
	return s.Favorites.Delete(ctx, userID, listingID)
}

func (s *Service) IsFavorited(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID) (bool, error) {
	return s.Favorites.Exists(ctx, userID, listingID)
}

// List returns the user's favorites newest first, each with its listing
// resolved.
func (s *Service) List(ctx context.Context, userID domainuser.ID) ([]Item, error) {
	favs, err := s.Favorites.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(favs))
	for _, fav := range favs {
		item := Item{Favorite: fav}
		listing, err := s.Listings.ByID(ctx, fav.ListingID)
		if err == nil {
			item.Listing = listing
		} else if !errors.Is(err, domainlistings.ErrNotFound) {
			return nil, err
		} else if s.Logger != nil {
			s.Logger.Debug("favorited listing no longer exists", "listing_id", fav.ListingID)
		}
		items = append(items, item)
	}
	return items, nil
}
