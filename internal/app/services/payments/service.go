package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainlistings "findy/internal/domain/listings"
	domainpayments "findy/internal/domain/payments"
	domainuser "findy/internal/domain/user"
)

// Service keeps payment bookkeeping records and drives the gateway intent
// lifecycle. Provider integration details live behind the Gateway port.
type Service struct {
	Payments domainpayments.Repository
	Listings domainlistings.Repository
	Gateway  domainpayments.Gateway
	Currency string
	Logger   *slog.Logger
}

type IntentResult struct {
	PaymentID    domainpayments.PaymentID
	ClientSecret string
}

// CreateIntent records a pending payment and asks the gateway for an intent.
func (s *Service) CreateIntent(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID, amount int64) (*IntentResult, error) {
	if amount <= 0 {
		return nil, domainpayments.ErrAmountInvalid
	}
	if _, err := s.Listings.ByID(ctx, listingID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	payment := &domainpayments.Payment{
		ID:        domainpayments.PaymentID(uuid.NewString()),
		UserID:    userID,
		ListingID: listingID,
		Amount:    amount,
		Currency:  s.currency(),
		Method:    "stripe",
		Status:    domainpayments.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	intent, err := s.Gateway.CreateIntent(ctx, amount, payment.Currency, map[string]string{
		"payment_id": string(payment.ID),
		"user_id":    string(userID),
		"listing_id": string(listingID),
	})
	if err != nil {
		return nil, err
	}
	payment.IntentID = intent.ID
	if err := s.Payments.Save(ctx, payment); err != nil {
		return nil, err
	}
	return &IntentResult{PaymentID: payment.ID, ClientSecret: intent.ClientSecret}, nil
}

// Confirm reconciles the record with the gateway's view of the intent.
func (s *Service) Confirm(ctx context.Context, paymentID domainpayments.PaymentID, intentID string) (*domainpayments.Payment, error) {
	payment, err := s.Payments.ByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	intent, err := s.Gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if intent.Status != "succeeded" {
		payment.Fail(now)
		if err := s.Payments.Save(ctx, payment); err != nil {
			return nil, err
		}
		return payment, domainpayments.ErrIntentFailed
	}
	payment.Complete(intent.ID, now)
	if err := s.Payments.Save(ctx, payment); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("payment completed", "payment_id", payment.ID, "amount", payment.Amount)
	}
	return payment, nil
}

func (s *Service) History(ctx context.Context, userID domainuser.ID) ([]*domainpayments.Payment, error) {
	return s.Payments.ListForUser(ctx, userID)
}

func (s *Service) currency() string {
	if s.Currency != "" {
		return s.Currency
	}
	return "INR"
}
