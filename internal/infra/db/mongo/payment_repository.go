package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"findy/internal/domain/listings"
	domainpayments "findy/internal/domain/payments"
	domainuser "findy/internal/domain/user"
)

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection("payments")}
}

type paymentDocument struct {
	ID            string `bson:"_id"`
	UserID        string `bson:"user_id"`
	ListingID     string `bson:"listing_id"`
	Amount        int64  `bson:"amount"`
	Currency      string `bson:"currency"`
	Method        string `bson:"method,omitempty"`
	IntentID      string `bson:"intent_id,omitempty"`
	Status        string `bson:"status"`
	TransactionID string `bson:"transaction_id,omitempty"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
}

func newPaymentDocument(p *domainpayments.Payment) paymentDocument {
	return paymentDocument{
		ID:            string(p.ID),
		UserID:        string(p.UserID),
		ListingID:     string(p.ListingID),
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        p.Method,
		IntentID:      p.IntentID,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt.UnixMilli(),
		UpdatedAt:     p.UpdatedAt.UnixMilli(),
	}
}

func (d paymentDocument) toEntity() *domainpayments.Payment {
	return &domainpayments.Payment{
		ID:            domainpayments.PaymentID(d.ID),
		UserID:        domainuser.ID(d.UserID),
		ListingID:     listings.ListingID(d.ListingID),
		Amount:        d.Amount,
		Currency:      d.Currency,
		Method:        d.Method,
		IntentID:      d.IntentID,
		Status:        domainpayments.Status(d.Status),
		TransactionID: d.TransactionID,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domainpayments.Payment) error {
	_, err := r.col.InsertOne(ctx, newPaymentDocument(payment))
	return err
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayments.PaymentID) (*domainpayments.Payment, error) {
	var doc paymentDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainpayments.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *PaymentRepository) Save(ctx context.Context, payment *domainpayments.Payment) error {
	doc := newPaymentDocument(payment)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *PaymentRepository) ListForUser(ctx context.Context, userID domainuser.ID) ([]*domainpayments.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": string(userID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainpayments.Payment
	for cursor.Next(ctx) {
		var doc paymentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}
