package domain

// Amenity tags come from a fixed vocabulary; the catalog and the filter UI
// agree on these exact strings.
const (
	AmenityWiFi      = "WiFi"
	AmenityParking   = "Parking"
	AmenityBreakfast = "Breakfast"
	AmenityGym       = "Gym"
	AmenityTV        = "TV"
	AmenityMiniBar   = "Mini Bar"
	AmenityBalcony   = "Balcony"
	AmenityJacuzzi   = "Jacuzzi"
)

// Room is a catalog entry. Immutable once loaded: the catalog is re-fetched
// wholesale on reload, never patched in place.
type Room struct {
	ID          string
	Name        string
	Price       float64 // nightly, non-negative
	Rating      float64 // 0.0–5.0
	Reviews     int
	Capacity    int
	Size        string // floor area label, e.g. "450 sq ft"
	Amenities   []string
	Description string
	Image       string
	Available   bool
}

// HasAmenity reports whether tag is present in the room's amenity set.
func (r Room) HasAmenity(tag string) bool {
	for _, a := range r.Amenities {
		if a == tag {
			return true
		}
	}
	return false
}
