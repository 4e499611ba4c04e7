package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"findy/internal/domain/user"
)

var (
	ErrTitleRequired       = errors.New("listings: title is required")
	ErrDescriptionRequired = errors.New("listings: description is required")
	ErrPriceInvalid        = errors.New("listings: price must be non-negative")
	ErrGenderInvalid       = errors.New("listings: gender must be Male, Female or Co-ed")
	ErrCoordinatesInvalid  = errors.New("listings: coordinates must be [longitude, latitude] in range")
	ErrNotFound            = errors.New("listings: not found")
	ErrNotOwner            = errors.New("listings: requester does not own this listing")
)

type ListingID string

// Gender options accepted for a listing.
const (
	GenderMale = "Male"
	GenderFem  = "Female"
	GenderCoed = "Co-ed"
)

// Location is a geographic point. Stored as GeoJSON in Mongo so distance
// filters can ride the 2dsphere index.
type Location struct {
	Longitude float64
	Latitude  float64
}

func (l Location) Valid() bool {
	return l.Longitude >= -180 && l.Longitude <= 180 && l.Latitude >= -90 && l.Latitude <= 90
}

type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// Lifestyle flags used for roommate vibe matching.
type Lifestyle struct {
	EarlyBird bool
	NightOwl  bool
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type Listing struct {
	ID            ListingID
	OwnerID       user.ID
	Title         string
	Description   string
	Price         int64
	Location      Location
	Address       Address
	PureVeg       bool
	Gender        string
	Lifestyle     Lifestyle
	Images        []string
	Amenities     []string
	AvailableFrom time.Time
	Contact       Contact
	IsActive      bool
	AverageRating float64
	ReviewCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repository persists listings and answers catalog searches. The messaging
// core consumes only ByID; the rest serves the listing endpoints.
type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
	UpdateRating(ctx context.Context, id ListingID, average float64, count int) error
}

type CreateParams struct {
	ID            ListingID
	OwnerID       user.ID
	Title         string
	Description   string
	Price         int64
	Location      Location
	Address       Address
	PureVeg       bool
	Gender        string
	Lifestyle     Lifestyle
	Images        []string
	Amenities     []string
	AvailableFrom time.Time
	Contact       Contact
	Now           time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if params.Price < 0 {
		return nil, ErrPriceInvalid
	}
	switch params.Gender {
	case GenderMale, GenderFem, GenderCoed:
	default:
		return nil, ErrGenderInvalid
	}
	if !params.Location.Valid() {
		return nil, ErrCoordinatesInvalid
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Listing{
		ID:            params.ID,
		OwnerID:       params.OwnerID,
		Title:         title,
		Description:   description,
		Price:         params.Price,
		Location:      params.Location,
		Address:       params.Address,
		PureVeg:       params.PureVeg,
		Gender:        params.Gender,
		Lifestyle:     params.Lifestyle,
		Images:        append([]string(nil), params.Images...),
		Amenities:     append([]string(nil), params.Amenities...),
		AvailableFrom: params.AvailableFrom,
		Contact:       params.Contact,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ApplyUpdate overwrites the mutable listing fields.
func (l *Listing) ApplyUpdate(params CreateParams) error {
	updated, err := NewListing(params)
	if err != nil {
		return err
	}
	l.Title = updated.Title
	l.Description = updated.Description
	l.Price = updated.Price
	l.Location = updated.Location
	l.Address = updated.Address
	l.PureVeg = updated.PureVeg
	l.Gender = updated.Gender
	l.Lifestyle = updated.Lifestyle
	l.Images = updated.Images
	l.Amenities = updated.Amenities
	l.AvailableFrom = updated.AvailableFrom
	l.Contact = updated.Contact
	l.UpdatedAt = time.Now().UTC()
	return nil
}
