package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	listingservice "findy/internal/app/services/listings"
	domainlistings "findy/internal/domain/listings"
)

type ListingHandler struct {
	Service *listingservice.Service
	Logger  *slog.Logger
}

type listingRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	Coordinates   []float64 `json:"coordinates"`
	Street        string    `json:"street"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zipCode"`
	PureVeg       bool      `json:"pureVeg"`
	Gender        string    `json:"gender"`
	EarlyBird     bool      `json:"earlyBird"`
	NightOwl      bool      `json:"nightOwl"`
	Images        []string  `json:"images"`
	Amenities     []string  `json:"amenities"`
	AvailableFrom time.Time `json:"availableFrom"`
	ContactName   string    `json:"contactName"`
	ContactEmail  string    `json:"contactEmail"`
	ContactPhone  string    `json:"contactPhone"`
}

func (r listingRequest) toParams() listingservice.CreateParams {
	params := listingservice.CreateParams{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Address: domainlistings.Address{
			Street:  r.Street,
			City:    r.City,
			State:   r.State,
			ZipCode: r.ZipCode,
		},
		PureVeg: r.PureVeg,
		Gender:  r.Gender,
		Lifestyle: domainlistings.Lifestyle{
			EarlyBird: r.EarlyBird,
			NightOwl:  r.NightOwl,
		},
		Images:        r.Images,
		Amenities:     r.Amenities,
		AvailableFrom: r.AvailableFrom,
		Contact: domainlistings.Contact{
			Name:  r.ContactName,
			Email: r.ContactEmail,
			Phone: r.ContactPhone,
		},
	}
	if len(r.Coordinates) == 2 {
		params.Location = domainlistings.Location{
			Longitude: r.Coordinates[0],
			Latitude:  r.Coordinates[1],
		}
	}
	return params
}

type listingResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	Coordinates   []float64 `json:"coordinates"`
	Street        string    `json:"street,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	ZipCode       string    `json:"zipCode,omitempty"`
	PureVeg       bool      `json:"pureVeg"`
	Gender        string    `json:"gender"`
	EarlyBird     bool      `json:"earlyBird"`
	NightOwl      bool      `json:"nightOwl"`
	Images        []string  `json:"images,omitempty"`
	Amenities     []string  `json:"amenities,omitempty"`
	AvailableFrom time.Time `json:"availableFrom,omitzero"`
	ContactName   string    `json:"contactName,omitempty"`
	ContactEmail  string    `json:"contactEmail,omitempty"`
	ContactPhone  string    `json:"contactPhone,omitempty"`
	IsActive      bool      `json:"isActive"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newListingResponse(l *domainlistings.Listing) listingResponse {
	return listingResponse{
		ID:            string(l.ID),
		OwnerID:       string(l.OwnerID),
		Title:         l.Title,
		Description:   l.Description,
		Price:         l.Price,
		Coordinates:   []float64{l.Location.Longitude, l.Location.Latitude},
		Street:        l.Address.Street,
		City:          l.Address.City,
		State:         l.Address.State,
		ZipCode:       l.Address.ZipCode,
		PureVeg:       l.PureVeg,
		Gender:        l.Gender,
		EarlyBird:     l.Lifestyle.EarlyBird,
		NightOwl:      l.Lifestyle.NightOwl,
		Images:        l.Images,
		Amenities:     l.Amenities,
		AvailableFrom: l.AvailableFrom,
		ContactName:   l.Contact.Name,
		ContactEmail:  l.Contact.Email,
		ContactPhone:  l.Contact.Phone,
		IsActive:      l.IsActive,
		AverageRating: l.AverageRating,
		ReviewCount:   l.ReviewCount,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func newListingResponses(items []*domainlistings.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, newListingResponse(l))
	}
	return out
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	params := req.toParams()
	params.OwnerID = p.ID
	listing, err := h.Service.Create(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, newListingResponse(listing))
}

func (h ListingHandler) Get(c *gin.Context) {
	listing, err := h.Service.Get(c.Request.Context(), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, newListingResponse(listing))
}

func (h ListingHandler) Update(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	listing, err := h.Service.Update(c.Request.Context(), domainlistings.ListingID(c.Param("id")), p.ID, req.toParams())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, newListingResponse(listing))
}

func (h ListingHandler) Delete(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainlistings.ListingID(c.Param("id")), p.ID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "listing deleted")
}

// List is the catalog endpoint with basic filters in the query string.
func (h ListingHandler) List(c *gin.Context) {
	params := searchParamsFromQuery(c)
	params.OnlyActive = true
	items, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, len(items), newListingResponses(items))
}

// Search runs the full filter set, including the geo filter.
func (h ListingHandler) Search(c *gin.Context) {
	params := searchParamsFromQuery(c)
	params.OnlyActive = true
	items, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, len(items), newListingResponses(items))
}

func searchParamsFromQuery(c *gin.Context) domainlistings.SearchParams {
	params := domainlistings.SearchParams{
		Query:  c.Query("q"),
		Gender: c.Query("gender"),
	}
	params.MinPrice, _ = strconv.ParseInt(c.DefaultQuery("minPrice", "0"), 10, 64)
	params.MaxPrice, _ = strconv.ParseInt(c.DefaultQuery("maxPrice", "0"), 10, 64)
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if raw := c.Query("pureVeg"); raw != "" {
		v := raw == "true" || raw == "1"
		params.PureVeg = &v
	}
	if raw := c.Query("earlyBird"); raw != "" {
		v := raw == "true" || raw == "1"
		params.EarlyBird = &v
	}
	if raw := c.Query("nightOwl"); raw != "" {
		v := raw == "true" || raw == "1"
		params.NightOwl = &v
	}
	lon, lonErr := strconv.ParseFloat(c.Query("longitude"), 64)
	lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	if lonErr == nil && latErr == nil {
		params.Origin = &domainlistings.Location{Longitude: lon, Latitude: lat}
		params.MaxDistanceKm, _ = strconv.ParseFloat(c.DefaultQuery("maxDistance", "10"), 64)
	}
	return params
}
