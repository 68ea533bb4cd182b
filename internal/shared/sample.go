package shared

import "grand_hotel/internal/domain"

// SampleRooms is the starter catalog used by cmd/seed and by tests that need
// a realistic dataset.
var SampleRooms = []domain.Room{
	{
		ID: "room-deluxe", Name: "Deluxe Suite", Price: 299, Rating: 4.8, Reviews: 124,
		Capacity: 2, Size: "450 sq ft",
		Amenities:   []string{domain.AmenityWiFi, domain.AmenityParking, domain.AmenityBreakfast, domain.AmenityGym},
		Description: "Spacious suite with panoramic city views",
		Image:       "/rooms/deluxe.jpg", Available: true,
	},
	{
		ID: "room-executive", Name: "Executive Room", Price: 199, Rating: 4.6, Reviews: 89,
		Capacity: 2, Size: "350 sq ft",
		Amenities:   []string{domain.AmenityWiFi, domain.AmenityParking, domain.AmenityBreakfast},
		Description: "Modern room perfect for business travelers",
		Image:       "/rooms/executive.jpg", Available: true,
	},
	{
		ID: "room-family", Name: "Family Suite", Price: 399, Rating: 4.9, Reviews: 156,
		Capacity: 4, Size: "600 sq ft",
		Amenities:   []string{domain.AmenityWiFi, domain.AmenityParking, domain.AmenityBreakfast, domain.AmenityGym},
		Description: "Spacious accommodation for families",
		Image:       "/rooms/family.jpg", Available: true,
	},
	{
		ID: "room-premium", Name: "Premium Suite", Price: 499, Rating: 5.0, Reviews: 78,
		Capacity: 2, Size: "550 sq ft",
		Amenities:   []string{domain.AmenityWiFi, domain.AmenityParking, domain.AmenityBreakfast, domain.AmenityGym, domain.AmenityBalcony},
		Description: "Luxury suite with private balcony",
		Image:       "/rooms/premium.jpg", Available: true,
	},
	{
		ID: "room-standard", Name: "Standard Room", Price: 149, Rating: 4.4, Reviews: 203,
		Capacity: 2, Size: "300 sq ft",
		Amenities:   []string{domain.AmenityWiFi, domain.AmenityBreakfast},
		Description: "Comfortable room with essential amenities",
		Image:       "/rooms/standard.jpg", Available: true,
	},
	{
		ID: "room-honeymoon", Name: "Honeymoon Suite", Price: 599, Rating: 5.0, Reviews: 92,
		Capacity: 2, Size: "700 sq ft",
		Amenities:   []string{domain.AmenityWiFi, domain.AmenityParking, domain.AmenityBreakfast, domain.AmenityGym, domain.AmenityJacuzzi},
		Description: "Romantic suite with jacuzzi and champagne",
		Image:       "/rooms/honeymoon.jpg", Available: true,
	},
}
