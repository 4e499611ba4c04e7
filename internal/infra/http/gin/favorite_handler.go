package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	favoriteservice "findy/internal/app/services/favorites"
	domainlistings "findy/internal/domain/listings"
)

type FavoriteHandler struct {
	Service *favoriteservice.Service
	Logger  *slog.Logger
}

type addFavoriteRequest struct {
	ListingID string `json:"listingId"`
}

func (h FavoriteHandler) Add(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ListingID == "" {
		respondFail(c, http.StatusBadRequest, "listingId is required")
		return
	}
	if err := h.Service.Add(c.Request.Context(), p.ID, domainlistings.ListingID(req.ListingID)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusCreated, "added to favorites")
}

func (h FavoriteHandler) Remove(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	listingID := c.Param("listingId")
	if listingID == "" {
		respondFail(c, http.StatusBadRequest, "listing id is required")
		return
	}
	if err := h.Service.Remove(c.Request.Context(), p.ID, domainlistings.ListingID(listingID)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "removed from favorites")
}

type favoriteResponse struct {
	ID        string           `json:"id"`
	ListingID string           `json:"listingId"`
	Listing   *listingResponse `json:"listing,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (h FavoriteHandler) List(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.Service.List(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]favoriteResponse, 0, len(items))
	for _, item := range items {
		resp := favoriteResponse{
			ID:        string(item.Favorite.ID),
			ListingID: string(item.Favorite.ListingID),
			CreatedAt: item.Favorite.CreatedAt,
		}
		if item.Listing != nil {
			lr := newListingResponse(item.Listing)
			resp.Listing = &lr
		}
		out = append(out, resp)
	}
	respondList(c, len(out), out)
}

func (h FavoriteHandler) Check(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	listingID := c.Param("listingId")
	if listingID == "" {
		respondFail(c, http.StatusBadRequest, "listing id is required")
		return
	}
	favorited, err := h.Service.IsFavorited(c.Request.Context(), p.ID, domainlistings.ListingID(listingID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"isFavorited": favorited})
}
