package listings

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainlistings "findy/internal/domain/listings"
	domainuser "findy/internal/domain/user"
)

// Service owns the listing catalog: creation, updates, search and the
// ownership rules around them.
type Service struct {
	Listings domainlistings.Repository
	Logger   *slog.Logger
}

// CreateParams mirrors the domain input minus generated fields.
type CreateParams struct {
	OwnerID       domainuser.ID
	Title         string
	Description   string
	Price         int64
	Location      domainlistings.Location
	Address       domainlistings.Address
	PureVeg       bool
	Gender        string
	Lifestyle     domainlistings.Lifestyle
	Images        []string
	Amenities     []string
	AvailableFrom time.Time
	Contact       domainlistings.Contact
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainlistings.Listing, error) {
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:            domainlistings.ListingID(uuid.NewString()),
		OwnerID:       params.OwnerID,
		Title:         params.Title,
		Description:   params.Description,
		Price:         params.Price,
		Location:      params.Location,
		Address:       params.Address,
		PureVeg:       params.PureVeg,
		Gender:        params.Gender,
		Lifestyle:     params.Lifestyle,
		Images:        params.Images,
		Amenities:     params.Amenities,
		AvailableFrom: params.AvailableFrom,
		Contact:       params.Contact,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", listing.OwnerID)
	}
	return listing, nil
}

func (s *Service) Get(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	return s.Listings.ByID(ctx, id)
}

// Update overwrites the mutable fields. Only the owner may update.
func (s *Service) Update(ctx context.Context, id domainlistings.ListingID, requesterID domainuser.ID, params CreateParams) (*domainlistings.Listing, error) {
	listing, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != requesterID {
		return nil, domainlistings.ErrNotOwner
	}
	if err := listing.ApplyUpdate(domainlistings.CreateParams{
		ID:            listing.ID,
		OwnerID:       listing.OwnerID,
		Title:         params.Title,
		Description:   params.Description,
		Price:         params.Price,
		Location:      params.Location,
		Address:       params.Address,
		PureVeg:       params.PureVeg,
		Gender:        params.Gender,
		Lifestyle:     params.Lifestyle,
		Images:        params.Images,
		Amenities:     params.Amenities,
		AvailableFrom: params.AvailableFrom,
		Contact:       params.Contact,
	}); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes a listing. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, id domainlistings.ListingID, requesterID domainuser.ID) error {
	listing, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != requesterID {
		return domainlistings.ErrNotOwner
	}
	return s.Listings.Delete(ctx, id)
}

// Search runs a catalog query with filters normalized.
func (s *Service) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	return s.Listings.Search(ctx, params.Normalized())
}
