package listings

import (
	"math"
	"testing"
)

func boolPtr(v bool) *bool { return &v }

func sampleListing() *Listing {
	return &Listing{
		ID:          "l1",
		Title:       "Bright PG near Indiranagar metro",
		Description: "Pure veg kitchen, fast wifi",
		Price:       12000,
		PureVeg:     true,
		Gender:      GenderCoed,
		Lifestyle:   Lifestyle{EarlyBird: true},
		Location:    Location{Longitude: 77.6408, Latitude: 12.9784},
		IsActive:    true,
	}
}

func TestSearchParamsMatches(t *testing.T) {
	listing := sampleListing()
	tests := []struct {
		name   string
		params SearchParams
		want   bool
	}{
		{"empty params match", SearchParams{}, true},
		{"query on title", SearchParams{Query: "indiranagar"}, true},
		{"query on description", SearchParams{Query: "wifi"}, true},
		{"query miss", SearchParams{Query: "penthouse"}, false},
		{"pure veg match", SearchParams{PureVeg: boolPtr(true)}, true},
		{"pure veg miss", SearchParams{PureVeg: boolPtr(false)}, false},
		{"gender match", SearchParams{Gender: GenderCoed}, true},
		{"gender miss", SearchParams{Gender: GenderFem}, false},
		{"price band hit", SearchParams{MinPrice: 10000, MaxPrice: 15000}, true},
		{"price floor miss", SearchParams{MinPrice: 13000}, false},
		{"price ceiling miss", SearchParams{MaxPrice: 9000}, false},
		{"early bird match", SearchParams{EarlyBird: boolPtr(true)}, true},
		{"night owl miss", SearchParams{NightOwl: boolPtr(true)}, false},
		{"inactive filtered", SearchParams{OnlyActive: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.params.Normalized()
			if got := params.Matches(listing); got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchParamsMatchesInactive(t *testing.T) {
	listing := sampleListing()
	listing.IsActive = false
	params := SearchParams{OnlyActive: true}.Normalized()
	if params.Matches(listing) {
		t.Fatal("inactive listing must not match an active-only search")
	}
}

func TestSearchParamsGeoFilter(t *testing.T) {
	listing := sampleListing()
	nearby := &Location{Longitude: 77.6101, Latitude: 12.9756}  // ~3.3km away
	faraway := &Location{Longitude: 72.8777, Latitude: 19.0760} // Mumbai

	within := SearchParams{Origin: nearby, MaxDistanceKm: 5}.Normalized()
	if !within.Matches(listing) {
		t.Fatal("listing within 5km should match")
	}
	outside := SearchParams{Origin: faraway, MaxDistanceKm: 50}.Normalized()
	if outside.Matches(listing) {
		t.Fatal("listing hundreds of km away should not match")
	}
}

func TestSearchParamsNormalized(t *testing.T) {
	origin := &Location{Longitude: 200, Latitude: 12} // invalid longitude
	params := SearchParams{
		Query:         "  Metro  ",
		Gender:        "other",
		MinPrice:      5000,
		MaxPrice:      3000,
		Origin:        origin,
		MaxDistanceKm: 10,
		Limit:         10000,
		Offset:        -3,
	}.Normalized()

	if params.Query != "metro" {
		t.Fatalf("query %q, want %q", params.Query, "metro")
	}
	if params.Gender != "" {
		t.Fatalf("unknown gender should clear, got %q", params.Gender)
	}
	if params.MaxPrice != 0 {
		t.Fatalf("max below min should clear, got %d", params.MaxPrice)
	}
	if params.MaxDistanceKm != 0 {
		t.Fatal("invalid origin should disable the geo filter")
	}
	if params.Limit != maxSearchLimit {
		t.Fatalf("limit %d, want cap %d", params.Limit, maxSearchLimit)
	}
	if params.Offset != 0 {
		t.Fatalf("negative offset should clamp to 0, got %d", params.Offset)
	}
}

func TestSearchParamsNormalizedNegativeMinPrice(t *testing.T) {
	params := SearchParams{MinPrice: -5, MaxPrice: 3}.Normalized()

	if params.MinPrice != 0 {
		t.Fatalf("negative min price should clamp to 0, got %d", params.MinPrice)
	}
	if params.MaxPrice != 3 {
		t.Fatalf("max price above clamped min should survive, got %d", params.MaxPrice)
	}
}

func TestDistanceKm(t *testing.T) {
	blr := Location{Longitude: 77.5946, Latitude: 12.9716}
	chennai := Location{Longitude: 80.2707, Latitude: 13.0827}

	got := DistanceKm(blr, chennai)
	if math.Abs(got-290) > 15 {
		t.Fatalf("Bangalore-Chennai distance %.1fkm, want ~290km", got)
	}
	if d := DistanceKm(blr, blr); d != 0 {
		t.Fatalf("distance to self %.4f, want 0", d)
	}
}
