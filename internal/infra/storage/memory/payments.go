package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	domainpayments "findy/internal/domain/payments"
	domainuser "findy/internal/domain/user"
)

// PaymentRepository stores payment records in memory.
type PaymentRepository struct {
	mu   sync.RWMutex
	byID map[domainpayments.PaymentID]*domainpayments.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{byID: make(map[domainpayments.PaymentID]*domainpayments.Payment)}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domainpayments.Payment) error {
	return r.Save(ctx, payment)
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayments.PaymentID) (*domainpayments.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if payment, ok := r.byID[id]; ok {
		copyPayment := *payment
		return &copyPayment, nil
	}
	return nil, domainpayments.ErrNotFound
}

func (r *PaymentRepository) Save(ctx context.Context, payment *domainpayments.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyPayment := *payment
	r.byID[payment.ID] = &copyPayment
	return nil
}

func (r *PaymentRepository) ListForUser(ctx context.Context, userID domainuser.ID) ([]*domainpayments.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*domainpayments.Payment
	for _, payment := range r.byID {
		if payment.UserID == userID {
			copyPayment := *payment
			items = append(items, &copyPayment)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// StubGateway fakes a payment provider for demo and test runs: every intent
// it creates succeeds on retrieval.
type StubGateway struct {
	seq atomic.Int64
}

func (g *StubGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (domainpayments.Intent, error) {
	n := g.seq.Add(1)
	id := fmt.Sprintf("pi_stub_%d", n)
	return domainpayments.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
	}, nil
}

func (g *StubGateway) RetrieveIntent(ctx context.Context, intentID string) (domainpayments.Intent, error) {
	return domainpayments.Intent{ID: intentID, Status: "succeeded"}, nil
}
