package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	paymentservice "findy/internal/app/services/payments"
	domainlistings "findy/internal/domain/listings"
	domainpayments "findy/internal/domain/payments"
)

type PaymentHandler struct {
	Service *paymentservice.Service
	Logger  *slog.Logger
}

type createIntentRequest struct {
	ListingID string `json:"listingId"`
	Amount    int64  `json:"amount"`
}

func (h PaymentHandler) CreateIntent(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.Service.CreateIntent(c.Request.Context(), p.ID, domainlistings.ListingID(req.ListingID), req.Amount)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{
		"paymentId":    string(result.PaymentID),
		"clientSecret": result.ClientSecret,
	})
}

type confirmPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	IntentID  string `json:"intentId"`
}

type paymentResponse struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listingId"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newPaymentResponse(p *domainpayments.Payment) paymentResponse {
	return paymentResponse{
		ID:            string(p.ID),
		ListingID:     string(p.ListingID),
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h PaymentHandler) Confirm(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentID == "" {
		respondFail(c, http.StatusBadRequest, "paymentId is required")
		return
	}
	payment, err := h.Service.Confirm(c.Request.Context(), domainpayments.PaymentID(req.PaymentID), req.IntentID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, newPaymentResponse(payment))
}

func (h PaymentHandler) History(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.Service.History(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]paymentResponse, 0, len(items))
	for _, payment := range items {
		out = append(out, newPaymentResponse(payment))
	}
	respondList(c, len(out), out)
}
