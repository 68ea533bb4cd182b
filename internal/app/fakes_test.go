package app_test

import (
	"context"
	"time"

	"grand_hotel/internal/domain"
)

// ---- fakes ----

type fakeRoomRepo struct {
	rooms []domain.Room
}

func (f *fakeRoomRepo) UpsertRoom(ctx context.Context, r domain.Room) error {
	f.rooms = append(f.rooms, r)
	return nil
}

func (f *fakeRoomRepo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	for _, r := range f.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Room{}, domain.ErrNotFound
}

func (f *fakeRoomRepo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return f.rooms, nil
}

type fakeBookingRepo struct {
	store map[string]domain.Booking
	saves int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{store: map[string]domain.Booking{}}
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, b domain.Booking) error {
	f.store[b.ID] = b
	return nil
}

func (f *fakeBookingRepo) SaveBooking(ctx context.Context, b domain.Booking) error {
	f.store[b.ID] = b
	f.saves++
	return nil
}

func (f *fakeBookingRepo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, ok := f.store[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.store {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListBookingsSince(ctx context.Context, since time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.store {
		if !b.CreatedAt.Before(since) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.Room:
		*d = v.([]domain.Room)
	case *domain.Room:
		*d = v.(domain.Room)
	case *[]domain.Booking:
		*d = v.([]domain.Booking)
	case *domain.DashboardStats:
		*d = v.(domain.DashboardStats)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeGateway struct {
	settled   bool
	chargeErr error
	refunds   []string
	charges   []domain.ChargeRequest
}

func (g *fakeGateway) Charge(ctx context.Context, req domain.ChargeRequest) (domain.ChargeResult, error) {
	g.charges = append(g.charges, req)
	if g.chargeErr != nil {
		return domain.ChargeResult{}, g.chargeErr
	}
	return domain.ChargeResult{Settled: g.settled, TransactionID: "tx-1"}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, reference string, amount float64) error {
	g.refunds = append(g.refunds, reference)
	return nil
}
