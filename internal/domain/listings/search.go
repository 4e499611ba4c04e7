package listings

import (
	"math"
	"strings"
)

const (
	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters. Text search matches title and
// description case-insensitively; the geo filter keeps listings within
// MaxDistanceKm of Origin.
type SearchParams struct {
	Query         string
	PureVeg       *bool
	Gender        string
	MinPrice      int64
	MaxPrice      int64
	Origin        *Location
	MaxDistanceKm float64
	EarlyBird     *bool
	NightOwl      *bool
	OnlyActive    bool
	Limit         int
	Offset        int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Query = strings.TrimSpace(strings.ToLower(normalized.Query))
	switch normalized.Gender {
	case GenderMale, GenderFem, GenderCoed:
	default:
		normalized.Gender = ""
	}
	if normalized.MinPrice < 0 {
		normalized.MinPrice = 0
	}
	if normalized.MaxPrice > 0 && normalized.MaxPrice < normalized.MinPrice {
		normalized.MaxPrice = 0
	}
	if normalized.MaxDistanceKm < 0 || normalized.Origin == nil || !normalized.Origin.Valid() {
		normalized.MaxDistanceKm = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	return normalized
}

// Matches evaluates the filters against one listing. The in-memory
// repository uses this predicate; the Mongo repository compiles the same
// filters into a query document.
func (p SearchParams) Matches(l *Listing) bool {
	if p.OnlyActive && !l.IsActive {
		return false
	}
	if p.Query != "" {
		title := strings.ToLower(l.Title)
		description := strings.ToLower(l.Description)
		if !strings.Contains(title, p.Query) && !strings.Contains(description, p.Query) {
			return false
		}
	}
	if p.PureVeg != nil && l.PureVeg != *p.PureVeg {
		return false
	}
	if p.Gender != "" && l.Gender != p.Gender {
		return false
	}
	if p.MinPrice > 0 && l.Price < p.MinPrice {
		return false
	}
	if p.MaxPrice > 0 && l.Price > p.MaxPrice {
		return false
	}
	if p.EarlyBird != nil && l.Lifestyle.EarlyBird != *p.EarlyBird {
		return false
	}
	if p.NightOwl != nil && l.Lifestyle.NightOwl != *p.NightOwl {
		return false
	}
	if p.MaxDistanceKm > 0 && p.Origin != nil {
		if DistanceKm(*p.Origin, l.Location) > p.MaxDistanceKm {
			return false
		}
	}
	return true
}

const earthRadiusKm = 6371.0

// DistanceKm computes the haversine great-circle distance between two points.
func DistanceKm(a, b Location) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := latB - latA
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
