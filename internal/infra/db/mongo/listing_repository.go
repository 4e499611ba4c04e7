package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "findy/internal/domain/listings"
	domainuser "findy/internal/domain/user"
)

// ListingRepository persists listings with a GeoJSON location so distance
// filters ride the 2dsphere index.
type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listings")}
}

func ensureListingIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("listings").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "pure_veg", Value: 1}, {Key: "gender", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	})
	return err
}

type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type listingDocument struct {
	ID            string    `bson:"_id"`
	OwnerID       string    `bson:"owner_id,omitempty"`
	Title         string    `bson:"title"`
	Description   string    `bson:"description"`
	Price         int64     `bson:"price"`
	Location      geoPoint  `bson:"location"`
	Street        string    `bson:"street,omitempty"`
	City          string    `bson:"city,omitempty"`
	State         string    `bson:"state,omitempty"`
	ZipCode       string    `bson:"zip_code,omitempty"`
	PureVeg       bool      `bson:"pure_veg"`
	Gender        string    `bson:"gender"`
	EarlyBird     bool      `bson:"early_bird"`
	NightOwl      bool      `bson:"night_owl"`
	Images        []string  `bson:"images,omitempty"`
	Amenities     []string  `bson:"amenities,omitempty"`
	AvailableFrom int64     `bson:"available_from,omitempty"`
	ContactName   string    `bson:"contact_name,omitempty"`
	ContactEmail  string    `bson:"contact_email,omitempty"`
	ContactPhone  string    `bson:"contact_phone,omitempty"`
	IsActive      bool      `bson:"is_active"`
	AverageRating float64   `bson:"average_rating"`
	ReviewCount   int       `bson:"review_count"`
	CreatedAt     int64     `bson:"created_at"`
	UpdatedAt     int64     `bson:"updated_at"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
		ID:          string(l.ID),
		OwnerID:     string(l.OwnerID),
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location: geoPoint{
			Type:        "Point",
			Coordinates: []float64{l.Location.Longitude, l.Location.Latitude},
		},
		Street:        l.Address.Street,
		City:          l.Address.City,
		State:         l.Address.State,
		ZipCode:       l.Address.ZipCode,
		PureVeg:       l.PureVeg,
		Gender:        l.Gender,
		EarlyBird:     l.Lifestyle.EarlyBird,
		NightOwl:      l.Lifestyle.NightOwl,
		Images:        l.Images,
		Amenities:     l.Amenities,
		ContactName:   l.Contact.Name,
		ContactEmail:  l.Contact.Email,
		ContactPhone:  l.Contact.Phone,
		IsActive:      l.IsActive,
		AverageRating: l.AverageRating,
		ReviewCount:   l.ReviewCount,
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
	}
	if !l.AvailableFrom.IsZero() {
		doc.AvailableFrom = l.AvailableFrom.UnixMilli()
	}
	return doc
}

func (d listingDocument) toEntity() *domainlistings.Listing {
	listing := &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		OwnerID:     domainuser.ID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Address: domainlistings.Address{
			Street:  d.Street,
			City:    d.City,
			State:   d.State,
			ZipCode: d.ZipCode,
		},
		PureVeg:       d.PureVeg,
		Gender:        d.Gender,
		Lifestyle:     domainlistings.Lifestyle{EarlyBird: d.EarlyBird, NightOwl: d.NightOwl},
		Images:        d.Images,
		Amenities:     d.Amenities,
		Contact:       domainlistings.Contact{Name: d.ContactName, Email: d.ContactEmail, Phone: d.ContactPhone},
		IsActive:      d.IsActive,
		AverageRating: d.AverageRating,
		ReviewCount:   d.ReviewCount,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
	if len(d.Location.Coordinates) == 2 {
		listing.Location = domainlistings.Location{
			Longitude: d.Location.Coordinates[0],
			Latitude:  d.Location.Coordinates[1],
		}
	}
	if d.AvailableFrom > 0 {
		listing.AvailableFrom = timestampToTime(d.AvailableFrom)
	}
	return listing
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

// Search compiles SearchParams into one filter document, the query-side
// twin of SearchParams.Matches.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	params = params.Normalized()
	filter := bson.M{}
	if params.OnlyActive {
		filter["is_active"] = true
	}
	if params.Query != "" {
		pattern := primitiveRegex(params.Query)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if params.PureVeg != nil {
		filter["pure_veg"] = *params.PureVeg
	}
	if params.Gender != "" {
		filter["gender"] = params.Gender
	}
	if params.MinPrice > 0 || params.MaxPrice > 0 {
		price := bson.M{}
		if params.MinPrice > 0 {
			price["$gte"] = params.MinPrice
		}
		if params.MaxPrice > 0 {
			price["$lte"] = params.MaxPrice
		}
		filter["price"] = price
	}
	if params.EarlyBird != nil {
		filter["early_bird"] = *params.EarlyBird
	}
	if params.NightOwl != nil {
		filter["night_owl"] = *params.NightOwl
	}

	opts := options.Find().SetLimit(int64(params.Limit)).SetSkip(int64(params.Offset))
	if params.MaxDistanceKm > 0 && params.Origin != nil {
		// $nearSphere orders by distance; no extra sort allowed with it.
		filter["location"] = bson.M{
			"$nearSphere": bson.M{
				"$geometry": geoPoint{
					Type:        "Point",
					Coordinates: []float64{params.Origin.Longitude, params.Origin.Latitude},
				},
				"$maxDistance": params.MaxDistanceKm * 1000,
			},
		}
	} else {
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []*domainlistings.Listing{}
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toEntity())
	}
	return items, cursor.Err()
}

func (r *ListingRepository) UpdateRating(ctx context.Context, id domainlistings.ListingID, average float64, count int) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": bson.M{
		"average_rating": average,
		"review_count":   count,
		"updated_at":     time.Now().UnixMilli(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func primitiveRegex(query string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
}
