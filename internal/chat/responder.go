// Package chat is the rule-based concierge: canned replies keyed on
// substrings of the guest's message. No model, no state, no I/O.
package chat

import (
	"strings"
	"time"
)

type Reply struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// rule order matters: the first matching keyword wins, so more specific
// keywords ("checkout") sit above their prefixes ("checkin" is safe, but
// "check" alone would shadow both).
type rule struct {
	keyword string
	reply   string
}

var rules = []rule{
	{"hello", "Hello! Welcome to our hotel. How can I assist you today?"},
	{"hi", "Hi there! How may I help you?"},
	{"booking", "To make a booking, please visit our Booking page or tell me your check-in date, check-out date, and number of guests."},
	{"price", "Our rooms range from $149 to $599 per night. Would you like to see available rooms?"},
	{"amenities", "We offer WiFi, parking, breakfast, gym, pool, restaurant, and 24/7 room service. What specific amenity are you interested in?"},
	{"location", "We are located at 123 Main Street, New Delhi, India. We're close to major attractions and business districts."},
	{"cancel", "You can cancel your booking free of charge up to 24 hours before check-in. Visit 'My Bookings' to manage your reservations."},
	{"contact", "You can reach us at +91 98765 43210 or email contact@grandhotel.example. We're available 24/7!"},
	{"rooms", "We have Deluxe Suites, Executive Rooms, Family Suites, Premium Suites, and Honeymoon Suites. Which interests you?"},
	{"checkout", "Check-out time is 11:00 AM. Late check-out can be arranged for an additional fee."},
	{"checkin", "Check-in time is 2:00 PM. Early check-in is subject to availability."},
}

const fallback = "I understand you're asking about: {query}. For detailed assistance, please contact our support team at +91 98765 43210 or visit our Contact page."

// Respond maps a guest message to a canned reply. Matching is a
// case-insensitive substring check against each rule keyword in order; when
// nothing matches, the fallback echoes the query back.
func Respond(message string, now time.Time) Reply {
	lower := strings.ToLower(message)
	for _, r := range rules {
		if strings.Contains(lower, r.keyword) {
			return Reply{Text: r.reply, At: now}
		}
	}
	return Reply{Text: strings.Replace(fallback, "{query}", message, 1), At: now}
}
