package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainfav "findy/internal/domain/favorites"
	"findy/internal/domain/listings"
	domainuser "findy/internal/domain/user"
)

type FavoriteRepository struct {
	col *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) *FavoriteRepository {
	return &FavoriteRepository{col: db.Collection("favorites")}
}

func ensureFavoriteIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("favorites").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "listing_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

type favoriteDocument struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	ListingID string `bson:"listing_id"`
	CreatedAt int64  `bson:"created_at"`
}

func (d favoriteDocument) toEntity() *domainfav.Favorite {
	return &domainfav.Favorite{
		ID:        domainfav.FavoriteID(d.ID),
		UserID:    domainuser.ID(d.UserID),
		ListingID: listings.ListingID(d.ListingID),
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

func (r *FavoriteRepository) Create(ctx context.Context, fav *domainfav.Favorite) error {
	doc := favoriteDocument{
		ID:        string(fav.ID),
		UserID:    string(fav.UserID),
		ListingID: string(fav.ListingID),
		CreatedAt: fav.CreatedAt.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domainfav.ErrAlreadyFavorited
	}
	return err
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID domainuser.ID, listingID listings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{
		"user_id":    string(userID),
		"listing_id": string(listingID),
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainfav.ErrNotFound
	}
	return nil
}

func (r *FavoriteRepository) ListForUser(ctx context.Context, userID domainuser.ID) ([]*domainfav.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": string(userID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainfav.Favorite
	for cursor.Next(ctx) {
		var doc favoriteDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID domainuser.ID, listingID listings.ListingID) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"user_id":    string(userID),
		"listing_id": string(listingID),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
