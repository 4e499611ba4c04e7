package payments

import (
	"context"
	"errors"
	"time"

	"findy/internal/domain/listings"
	"findy/internal/domain/user"
)

var (
	ErrAmountInvalid = errors.New("payments: amount must be positive")
	ErrNotFound      = errors.New("payments: not found")
	ErrIntentFailed  = errors.New("payments: payment intent not succeeded")
)

type PaymentID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Payment is a bookkeeping record for one checkout attempt. Amounts are in
// minor units (paise/cents).
type Payment struct {
	ID            PaymentID
	UserID        user.ID
	ListingID     listings.ListingID
	Amount        int64
	Currency      string
	Method        string
	IntentID      string
	Status        Status
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	ByID(ctx context.Context, id PaymentID) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
	ListForUser(ctx context.Context, userID user.ID) ([]*Payment, error)
}

// Intent is the gateway-side handle for a pending charge.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// Gateway abstracts the payment provider. The concrete integration is an
// external collaborator; a stub stands in where no provider is configured.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (Intent, error)
}

// Complete transitions the record after the gateway confirms the intent.
func (p *Payment) Complete(transactionID string, now time.Time) {
	p.Status = StatusCompleted
	p.TransactionID = transactionID
	p.touch(now)
}

// Fail marks the attempt as failed.
func (p *Payment) Fail(now time.Time) {
	p.Status = StatusFailed
	p.touch(now)
}

func (p *Payment) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	p.UpdatedAt = now.UTC()
}
