package favorites

import (
	"context"
	"errors"
	"time"

	"findy/internal/domain/listings"
	"findy/internal/domain/user"
)

var (
	ErrAlreadyFavorited = errors.New("favorites: listing already in favorites")
	ErrNotFound         = errors.New("favorites: not found")
)

type FavoriteID string

// Favorite links a user to a saved listing. Unique per (user, listing).
type Favorite struct {
	ID        FavoriteID
	UserID    user.ID
	ListingID listings.ListingID
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, fav *Favorite) error
	Delete(ctx context.Context, userID user.ID, listingID listings.ListingID) error
	ListForUser(ctx context.Context, userID user.ID) ([]*Favorite, error)
	Exists(ctx context.Context, userID user.ID, listingID listings.ListingID) (bool, error)
}
