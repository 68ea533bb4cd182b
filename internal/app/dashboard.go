package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"grand_hotel/internal/domain"
)

// DashboardService derives the admin analytics from stored bookings rather
// than keeping separate counters that could drift.
type DashboardService struct {
	bookings domain.BookingRepository
	rooms    domain.RoomRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewDashboardService(b domain.BookingRepository, r domain.RoomRepository, c domain.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{bookings: b, rooms: r, cache: c, cacheTTL: ttl, now: time.Now}
}

func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Stats aggregates the trailing window. Revenue counts confirmed bookings
// only; occupancy is booked room-nights over rooms × window days, capped at 1.
func (s *DashboardService) Stats(ctx context.Context, windowDays int) (domain.DashboardStats, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	key := fmt.Sprintf("dashboard:%d", windowDays)
	var cached domain.DashboardStats
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	now := s.now().UTC()
	since := now.AddDate(0, 0, -windowDays)

	bookings, err := s.bookings.ListBookingsSince(ctx, since)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{WindowDays: windowDays, TotalBookings: len(bookings)}
	perRoom := map[string]*domain.RoomPerformance{}
	bookedNights := 0

	for _, b := range bookings {
		switch b.Status {
		case domain.StatusConfirmed:
			stats.ConfirmedCount++
			stats.TotalRevenue += b.TotalPrice
			bookedNights += domain.Nights(b.CheckIn, b.CheckOut)
			p, ok := perRoom[b.RoomID]
			if !ok {
				p = &domain.RoomPerformance{RoomID: b.RoomID, RoomName: b.RoomName}
				perRoom[b.RoomID] = p
			}
			p.Bookings++
			p.Revenue += b.TotalPrice
		case domain.StatusPending:
			stats.PendingCount++
		case domain.StatusCancelled:
			stats.CancelledCount++
		}
	}

	if n := len(rooms) * windowDays; n > 0 {
		stats.OccupancyRate = float64(bookedNights) / float64(n)
		if stats.OccupancyRate > 1 {
			stats.OccupancyRate = 1
		}
	}

	for _, p := range perRoom {
		stats.TopRooms = append(stats.TopRooms, *p)
	}
	sort.Slice(stats.TopRooms, func(i, j int) bool {
		if stats.TopRooms[i].Revenue != stats.TopRooms[j].Revenue {
			return stats.TopRooms[i].Revenue > stats.TopRooms[j].Revenue
		}
		return stats.TopRooms[i].RoomID < stats.TopRooms[j].RoomID
	})
	if len(stats.TopRooms) > 5 {
		stats.TopRooms = stats.TopRooms[:5]
	}

	recent := make([]domain.Booking, len(bookings))
	copy(recent, bookings)
	sort.Slice(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.Recent = recent

	_ = s.cache.Set(ctx, key, stats, int(s.cacheTTL.Seconds()))
	return stats, nil
}
