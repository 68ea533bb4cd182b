package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrPaymentDeclined = errors.New("payment declined")
)

type RoomRepository interface {
	// Write paths
	UpsertRoom(ctx context.Context, r Room) error

	// Read paths
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) error
	SaveBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]Booking, error)
	ListBookingsSince(ctx context.Context, since time.Time) ([]Booking, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// PaymentGateway is the external settlement collaborator. A settled charge
// yields a confirmed booking; a deferred one leaves it pending until the
// gateway resolves it out of band.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	Refund(ctx context.Context, reference string, amount float64) error
}

type ChargeRequest struct {
	Reference string // booking reference, doubles as idempotency key
	UserID    string
	Amount    float64
	Currency  string
}

type ChargeResult struct {
	Settled       bool
	TransactionID string
}

// Read models & queries

type DashboardStats struct {
	WindowDays     int
	TotalRevenue   float64
	TotalBookings  int
	ConfirmedCount int
	PendingCount   int
	CancelledCount int
	OccupancyRate  float64 // booked room-nights / (rooms × window days)
	TopRooms       []RoomPerformance
	Recent         []Booking
}

type RoomPerformance struct {
	RoomID   string
	RoomName string
	Bookings int
	Revenue  float64
}
