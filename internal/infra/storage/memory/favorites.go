package memory

import (
	"context"
	"sort"
	"sync"

	domainfavorites "findy/internal/domain/favorites"
	domainlistings "findy/internal/domain/listings"
	domainuser "findy/internal/domain/user"
)

// FavoriteRepository stores favorites in memory with (user, listing)
// uniqueness.
type FavoriteRepository struct {
	mu    sync.RWMutex
	items map[string]*domainfavorites.Favorite
}

func NewFavoriteRepository() *FavoriteRepository {
	return &FavoriteRepository{items: make(map[string]*domainfavorites.Favorite)}
}

func (r *FavoriteRepository) Create(ctx context.Context, fav *domainfavorites.Favorite) error {
	key := favoriteKey(fav.UserID, fav.ListingID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; ok {
		return domainfavorites.ErrAlreadyFavorited
	}
	copyFav := *fav
	r.items[key] = &copyFav
	return nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID) error {
	key := favoriteKey(userID, listingID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		return domainfavorites.ErrNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *FavoriteRepository) ListForUser(ctx context.Context, userID domainuser.ID) ([]*domainfavorites.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*domainfavorites.Favorite
	for _, fav := range r.items {
		if fav.UserID == userID {
			copyFav := *fav
			items = append(items, &copyFav)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[favoriteKey(userID, listingID)]
	return ok, nil
}

func favoriteKey(userID domainuser.ID, listingID domainlistings.ListingID) string {
	return string(userID) + "|" + string(listingID)
}
