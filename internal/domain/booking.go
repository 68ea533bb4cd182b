package domain

import (
	"errors"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled" // terminal
)

var (
	// ErrCancelTooLate: status is confirmed but check-in is 24h away or less.
	ErrCancelTooLate = errors.New("booking: cannot cancel within 24h of check-in")
	// ErrCancelInvalidState: status is not confirmed (pending or already cancelled).
	ErrCancelInvalidState = errors.New("booking: status does not permit cancellation")
)

// CancellationWindow is how far ahead of check-in a confirmed booking must be
// for a guest-initiated cancel. The comparison is strict: exactly 24h is too late.
const CancellationWindow = 24 * time.Hour

// Booking is one stay. The room reference is weak: the booking stays valid
// even if the room is later removed from the catalog. Status moves
// pending -> confirmed/cancelled via the payment collaborator; the only
// transition owned here is confirmed -> cancelled.
type Booking struct {
	ID         string
	Reference  string // guest-facing, e.g. "BK-2026-4F7A"
	UserID     string
	RoomID     string
	RoomName   string // snapshot at booking time
	CheckIn    time.Time
	CheckOut   time.Time // strictly after CheckIn
	Guests     int
	TotalPrice float64
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsCancellable reports whether b may be cancelled at now. True iff the
// booking is confirmed and check-in is strictly more than 24h away. Both
// instants are compared in UTC so daylight-saving shifts can't produce an
// off-by-one window.
func IsCancellable(b Booking, now time.Time) bool {
	if b.Status != StatusConfirmed {
		return false
	}
	return b.CheckIn.UTC().Sub(now.UTC()) > CancellationWindow
}

// Cancel returns a copy of b with status cancelled and UpdatedAt set to now,
// or an error describing why the transition is not allowed. The input value
// is never modified; on error the caller's booking is untouched.
func Cancel(b Booking, now time.Time) (Booking, error) {
	if b.Status != StatusConfirmed {
		return Booking{}, ErrCancelInvalidState
	}
	if !IsCancellable(b, now) {
		return Booking{}, ErrCancelTooLate
	}
	out := b
	out.Status = StatusCancelled
	out.UpdatedAt = now.UTC()
	return out, nil
}

// Nights is the whole number of nights between check-in and check-out,
// rounding any fractional day up. A checkout one hour after midnight still
// counts as a night, never zero.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.UTC().Sub(checkIn.UTC())
	if d <= 0 {
		return 0
	}
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}
