package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
)

// ConversationRepository persists conversations. The unique index on
// pair_key is the enforcement point for the one-conversation-per-pair
// invariant: concurrent inserts collide on the index instead of
// duplicating the thread.
type ConversationRepository struct {
	col *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{col: db.Collection("conversations")}
}

func ensureConversationIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("conversations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "participants", Value: 1}, {Key: "activity_at", Value: -1}},
		},
	})
	return err
}

type conversationDocument struct {
	ID            string   `bson:"_id"`
	PairKey       string   `bson:"pair_key"`
	Participants  []string `bson:"participants"`
	ListingID     string   `bson:"listing_id,omitempty"`
	LastMessageID string   `bson:"last_message_id,omitempty"`
	LastMessageAt int64    `bson:"last_message_at,omitempty"`
	ActivityAt    int64    `bson:"activity_at"`
	CreatedAt     int64    `bson:"created_at"`
	UpdatedAt     int64    `bson:"updated_at"`
}

func newConversationDocument(c *domainchat.Conversation) conversationDocument {
	doc := conversationDocument{
		ID:            string(c.ID),
		PairKey:       domainchat.PairKey(c.Participants[0], c.Participants[1], c.ListingID),
		Participants:  make([]string, 0, len(c.Participants)),
		ListingID:     c.ListingID,
		LastMessageID: string(c.LastMessageID),
		CreatedAt:     c.CreatedAt.UnixMilli(),
		UpdatedAt:     c.UpdatedAt.UnixMilli(),
	}
	for _, p := range c.Participants {
		doc.Participants = append(doc.Participants, string(p))
	}
	if !c.LastMessageAt.IsZero() {
		doc.LastMessageAt = c.LastMessageAt.UnixMilli()
		doc.ActivityAt = doc.LastMessageAt
	} else {
		doc.ActivityAt = doc.UpdatedAt
	}
	return doc
}

func (d conversationDocument) toEntity() *domainchat.Conversation {
	conv := &domainchat.Conversation{
		ID:            domainchat.ConversationID(d.ID),
		Participants:  make([]domainuser.ID, 0, len(d.Participants)),
		ListingID:     d.ListingID,
		LastMessageID: domainchat.MessageID(d.LastMessageID),
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
	for _, p := range d.Participants {
		conv.Participants = append(conv.Participants, domainuser.ID(p))
	}
	if d.LastMessageAt > 0 {
		conv.LastMessageAt = timestampToTime(d.LastMessageAt)
	}
	return conv
}

func (r *ConversationRepository) Find(ctx context.Context, a, b domainuser.ID, listingID string) (*domainchat.Conversation, error) {
	var doc conversationDocument
	err := r.col.FindOne(ctx, bson.M{"pair_key": domainchat.PairKey(a, b, listingID)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domainchat.Conversation) error {
	_, err := r.col.InsertOne(ctx, newConversationDocument(conv))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainchat.ErrConversationExists
		}
		return err
	}
	return nil
}

func (r *ConversationRepository) ByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	var doc conversationDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID domainuser.ID) ([]*domainchat.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "activity_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"participants": string(userID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []*domainchat.Conversation{}
	for cursor.Next(ctx) {
		var doc conversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toEntity())
	}
	return items, cursor.Err()
}

func (r *ConversationRepository) UpdateLastMessage(ctx context.Context, id domainchat.ConversationID, messageID domainchat.MessageID, at time.Time) error {
	ms := at.UnixMilli()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": bson.M{
		"last_message_id": string(messageID),
		"last_message_at": ms,
		"activity_at":     ms,
		"updated_at":      ms,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrConversationNotFound
	}
	return nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
