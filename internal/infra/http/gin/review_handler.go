package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	reviewservice "findy/internal/app/services/reviews"
	domainlistings "findy/internal/domain/listings"
	domainreviews "findy/internal/domain/reviews"
)

type ReviewHandler struct {
	Service *reviewservice.Service
	Logger  *slog.Logger
}

type createReviewRequest struct {
	ListingID string `json:"listingId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Helpful   int       `json:"helpful"`
	CreatedAt time.Time `json:"createdAt"`
}

func newReviewResponse(r *domainreviews.Review) reviewResponse {
	return reviewResponse{
		ID:        string(r.ID),
		ListingID: string(r.ListingID),
		UserID:    string(r.UserID),
		Rating:    r.Rating,
		Comment:   r.Comment,
		Helpful:   r.Helpful,
		CreatedAt: r.CreatedAt,
	}
}

func (h ReviewHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	review, err := h.Service.Create(c.Request.Context(), reviewservice.CreateParams{
		ListingID: domainlistings.ListingID(req.ListingID),
		UserID:    p.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, newReviewResponse(review))
}

func (h ReviewHandler) ListForListing(c *gin.Context) {
	listingID := c.Param("listingId")
	if listingID == "" {
		respondFail(c, http.StatusBadRequest, "listing id is required")
		return
	}
	items, average, err := h.Service.ListForListing(c.Request.Context(), domainlistings.ListingID(listingID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]reviewResponse, 0, len(items))
	for _, r := range items {
		out = append(out, newReviewResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"count":         len(out),
		"averageRating": average,
		"data":          out,
	})
}
