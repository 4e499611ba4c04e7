package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
)

// MessageRepository persists messages. Each document carries a server-side
// ObjectID sequence field so display order stays stable even when two
// messages land in the same millisecond.
type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection("messages")}
}

func ensureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("messages").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "is_read", Value: 1}}},
	})
	return err
}

type messageDocument struct {
	ID             string             `bson:"_id"`
	Seq            primitive.ObjectID `bson:"seq"`
	ConversationID string             `bson:"conversation_id"`
	SenderID       string             `bson:"sender_id"`
	ReceiverID     string             `bson:"receiver_id"`
	Content        string             `bson:"content"`
	ListingID      string             `bson:"listing_id,omitempty"`
	IsRead         bool               `bson:"is_read"`
	ReadAt         int64              `bson:"read_at,omitempty"`
	CreatedAt      int64              `bson:"created_at"`
}

func (d messageDocument) toEntity() *domainchat.Message {
	msg := &domainchat.Message{
		ID:             domainchat.MessageID(d.ID),
		ConversationID: domainchat.ConversationID(d.ConversationID),
		SenderID:       domainuser.ID(d.SenderID),
		ReceiverID:     domainuser.ID(d.ReceiverID),
		Content:        d.Content,
		ListingID:      d.ListingID,
		IsRead:         d.IsRead,
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
	if d.ReadAt > 0 {
		msg.ReadAt = timestampToTime(d.ReadAt)
	}
	return msg
}

func (r *MessageRepository) Create(ctx context.Context, msg *domainchat.Message) error {
	doc := messageDocument{
		ID:             string(msg.ID),
		Seq:            primitive.NewObjectID(),
		ConversationID: string(msg.ConversationID),
		SenderID:       string(msg.SenderID),
		ReceiverID:     string(msg.ReceiverID),
		Content:        msg.Content,
		ListingID:      msg.ListingID,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *MessageRepository) ByID(ctx context.Context, id domainchat.MessageID) (*domainchat.Message, error) {
	var doc messageDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrMessageNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *MessageRepository) List(ctx context.Context, conversationID domainchat.ConversationID) ([]*domainchat.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"conversation_id": string(conversationID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []*domainchat.Message{}
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toEntity())
	}
	return items, cursor.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, conversationID domainchat.ConversationID, receiverID domainuser.ID, at time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx, bson.M{
		"conversation_id": string(conversationID),
		"receiver_id":     string(receiverID),
		"is_read":         false,
	}, bson.M{"$set": bson.M{
		"is_read": true,
		"read_at": at.UnixMilli(),
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
