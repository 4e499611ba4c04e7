package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"findy/internal/domain/listings"
	domainreviews "findy/internal/domain/reviews"
	domainuser "findy/internal/domain/user"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("reviews")}
}

func ensureReviewIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "listing_id", Value: 1},
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

type reviewDocument struct {
	ID        string `bson:"_id"`
	ListingID string `bson:"listing_id"`
	UserID    string `bson:"user_id"`
	Rating    int    `bson:"rating"`
	Comment   string `bson:"comment,omitempty"`
	Helpful   int    `bson:"helpful"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (d reviewDocument) toEntity() *domainreviews.Review {
	return &domainreviews.Review{
		ID:        domainreviews.ReviewID(d.ID),
		ListingID: listings.ListingID(d.ListingID),
		UserID:    domainuser.ID(d.UserID),
		Rating:    d.Rating,
		Comment:   d.Comment,
		Helpful:   d.Helpful,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	doc := reviewDocument{
		ID:        string(review.ID),
		ListingID: string(review.ListingID),
		UserID:    string(review.UserID),
		Rating:    review.Rating,
		Comment:   review.Comment,
		Helpful:   review.Helpful,
		CreatedAt: review.CreatedAt.UnixMilli(),
		UpdatedAt: review.UpdatedAt.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrAlreadyReviewed
	}
	return err
}

func (r *ReviewRepository) ListForListing(ctx context.Context, listingID listings.ListingID) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainreviews.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}
