package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"grand_hotel/internal/adapters/observability"
	"grand_hotel/internal/domain"
	"grand_hotel/internal/notify"
)

var (
	ErrRoomUnavailable = errors.New("room is not available")
	ErrBadStay         = errors.New("check-out must be after check-in")
	ErrTooManyGuests   = errors.New("guest count exceeds room capacity")
	ErrForbidden       = errors.New("booking belongs to another user")
)

// BookingService owns booking creation and the confirmed->cancelled
// transition. The pending->confirmed/cancelled transitions belong to the
// payment gateway and arrive out of band.
type BookingService struct {
	bookings domain.BookingRepository
	rooms    domain.RoomRepository
	gateway  domain.PaymentGateway
	notifier *notify.Notifier
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewBookingService(
	b domain.BookingRepository,
	r domain.RoomRepository,
	g domain.PaymentGateway,
	n *notify.Notifier,
	c domain.Cache,
	ttl time.Duration,
) *BookingService {
	return &BookingService{
		bookings: b, rooms: r, gateway: g, notifier: n,
		cache: c, cacheTTL: ttl, now: time.Now,
	}
}

// WithClock overrides the wall clock; tests pin "now" with it.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

type CreateBookingInput struct {
	UserID   string
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// CreateBooking prices the stay, charges the gateway, and persists the
// booking as confirmed (settled charge) or pending (deferred). A declined
// charge persists nothing.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if !in.CheckOut.After(in.CheckIn) {
		return domain.Booking{}, ErrBadStay
	}
	room, err := s.rooms.GetRoom(ctx, in.RoomID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !room.Available {
		return domain.Booking{}, ErrRoomUnavailable
	}
	if in.Guests < 1 || in.Guests > room.Capacity {
		return domain.Booking{}, ErrTooManyGuests
	}

	now := s.now().UTC()
	nights := domain.Nights(in.CheckIn, in.CheckOut)
	b := domain.Booking{
		ID:         uuid.NewString(),
		Reference:  newReference(now),
		UserID:     in.UserID,
		RoomID:     room.ID,
		RoomName:   room.Name,
		CheckIn:    in.CheckIn.UTC(),
		CheckOut:   in.CheckOut.UTC(),
		Guests:     in.Guests,
		TotalPrice: float64(nights) * room.Price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, err := s.gateway.Charge(ctx, domain.ChargeRequest{
		Reference: b.Reference,
		UserID:    b.UserID,
		Amount:    b.TotalPrice,
		Currency:  "USD",
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("charge %s: %w", b.Reference, err)
	}
	if res.Settled {
		b.Status = domain.StatusConfirmed
	} else {
		b.Status = domain.StatusPending
	}

	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		return domain.Booking{}, err
	}
	s.invalidateUser(ctx, b.UserID)

	observability.ObserveBooking(string(b.Status))
	if b.Status == domain.StatusConfirmed {
		s.notifier.Publish(notify.Event{
			Type:    notify.BookingConfirmed,
			Title:   "Booking confirmed",
			Message: fmt.Sprintf("%s is booked for %d night(s)", b.RoomName, nights),
			At:      now,
		})
	} else {
		s.notifier.Publish(notify.Event{
			Type:    notify.BookingPending,
			Title:   "Booking pending",
			Message: fmt.Sprintf("Payment for %s is being processed", b.RoomName),
			At:      now,
		})
	}
	return b, nil
}

// CancelBooking applies the 24h rule and records the transition. The refund
// is best-effort: the cancellation stands even if the refund call fails, and
// the failure is logged for reconciliation.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string) (domain.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.UserID != userID {
		return domain.Booking{}, ErrForbidden
	}

	now := s.now()
	cancelled, err := domain.Cancel(b, now)
	if err != nil {
		observability.ObserveBooking("cancel_rejected")
		return domain.Booking{}, err
	}
	if err := s.bookings.SaveBooking(ctx, cancelled); err != nil {
		return domain.Booking{}, err
	}
	s.invalidateUser(ctx, b.UserID)
	observability.ObserveBooking("cancelled")

	if err := s.gateway.Refund(ctx, cancelled.Reference, cancelled.TotalPrice); err != nil {
		log.Error().Err(err).Str("reference", cancelled.Reference).Msg("refund failed; needs reconciliation")
	}

	s.notifier.Publish(notify.Event{
		Type:    notify.BookingCancelled,
		Title:   "Booking cancelled",
		Message: fmt.Sprintf("%s (%s) was cancelled", cancelled.RoomName, cancelled.Reference),
		At:      now.UTC(),
	})
	return cancelled, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID string, admin bool) (domain.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !admin && b.UserID != userID {
		return domain.Booking{}, ErrForbidden
	}
	return b, nil
}

// ListUserBookings returns the caller's bookings, cache-aside.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	key := userBookingsKey(userID)
	var cached []domain.Booking
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	out, err := s.bookings.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}

	// copy slice to avoid aliasing the repo's backing array
	cp := make([]domain.Booking, len(out))
	copy(cp, out)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// IsCancellable mirrors the rule the cancel endpoint enforces so the client
// can disable the action without re-deriving time math.
func (s *BookingService) IsCancellable(b domain.Booking) bool {
	return domain.IsCancellable(b, s.now())
}

func (s *BookingService) invalidateUser(ctx context.Context, userID string) {
	_ = s.cache.Del(ctx, userBookingsKey(userID))
}

func userBookingsKey(userID string) string { return fmt.Sprintf("bookings:user:%s", userID) }

// newReference builds the guest-facing reference, e.g. "BK-2026-4F7A21".
func newReference(now time.Time) string {
	tail := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("BK-%d-%s", now.Year(), tail)
}
