package domain

import (
	"sort"
	"strings"
)

type SortKey string

const (
	SortRecommended SortKey = "recommended"
	SortPriceAsc    SortKey = "price-low"
	SortPriceDesc   SortKey = "price-high"
	SortRatingDesc  SortKey = "rating"
)

// FilterSpec is one user interaction's worth of search criteria. Callers are
// responsible for clamping malformed numeric bounds before invocation;
// VisibleRooms applies the spec as-is.
type FilterSpec struct {
	SearchTerm        string
	MinPrice          float64
	MaxPrice          float64
	MinRating         float64
	MinGuests         int
	RequiredAmenities []string // must-have-all
	Sort              SortKey
}

// VisibleRooms returns the ordered subset of catalog matching spec. The input
// slice is never mutated; the result is a fresh slice. MinPrice > MaxPrice
// simply yields an empty result — no room can satisfy the bound.
func VisibleRooms(catalog []Room, spec FilterSpec) []Room {
	term := strings.ToLower(spec.SearchTerm)

	out := make([]Room, 0, len(catalog))
	for _, room := range catalog {
		if term != "" && !strings.Contains(strings.ToLower(room.Name), term) {
			continue
		}
		if room.Price < spec.MinPrice || room.Price > spec.MaxPrice {
			continue
		}
		if room.Rating < spec.MinRating {
			continue
		}
		if room.Capacity < spec.MinGuests {
			continue
		}
		if !hasAll(room, spec.RequiredAmenities) {
			continue
		}
		out = append(out, room)
	}

	// SliceStable keeps catalog order for equal keys; recommended is the
	// identity ordering.
	switch spec.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRatingDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	return out
}

func hasAll(r Room, required []string) bool {
	for _, tag := range required {
		if !r.HasAmenity(tag) {
			return false
		}
	}
	return true
}
