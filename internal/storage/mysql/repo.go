package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"grand_hotel/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- rooms ----

func (r *Repo) UpsertRoom(ctx context.Context, room domain.Room) error {
	amen, _ := json.Marshal(room.Amenities)
	_, err := r.db.ExecContext(ctx, upsertRoomSQL,
		room.ID,
		room.Name,
		room.Price,
		room.Rating,
		room.Reviews,
		room.Capacity,
		room.Size,
		string(amen),
		room.Description,
		room.Image,
		room.Available,
	)
	return err
}

func (r *Repo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	row := r.db.QueryRowContext(ctx, getRoomSQL, id)
	room, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.ErrNotFound
	}
	return room, err
}

func (r *Repo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, listRoomsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanRoom(s scanner) (domain.Room, error) {
	var room domain.Room
	var amenitiesJSON []byte
	if err := s.Scan(
		&room.ID,
		&room.Name,
		&room.Price,
		&room.Rating,
		&room.Reviews,
		&room.Capacity,
		&room.Size,
		&amenitiesJSON,
		&room.Description,
		&room.Image,
		&room.Available,
	); err != nil {
		return domain.Room{}, err
	}
	_ = json.Unmarshal(amenitiesJSON, &room.Amenities)
	return room, nil
}

// ---- bookings ----

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) error {
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.Reference,
		b.UserID,
		b.RoomID,
		b.RoomName,
		b.CheckIn.UTC(),
		b.CheckOut.UTC(),
		b.Guests,
		b.TotalPrice,
		string(b.Status),
		b.CreatedAt.UTC(),
		b.UpdatedAt.UTC(),
	)
	return err
}

// SaveBooking persists a status transition. Only status and updated_at ever
// change after creation; everything else is a snapshot.
func (r *Repo) SaveBooking(ctx context.Context, b domain.Booking) error {
	res, err := r.db.ExecContext(ctx, saveBookingSQL, string(b.Status), b.UpdatedAt.UTC(), b.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, listUserBookingsSQL, userID)
}

func (r *Repo) ListBookingsSince(ctx context.Context, since time.Time) ([]domain.Booking, error) {
	return r.listBookings(ctx, listBookingsSinceSQL, since.UTC())
}

func (r *Repo) listBookings(ctx context.Context, query string, arg any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := s.Scan(
		&b.ID,
		&b.Reference,
		&b.UserID,
		&b.RoomID,
		&b.RoomName,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&b.TotalPrice,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		u.ID,
		strings.ToLower(u.Email),
		u.Name,
		u.PasswordHash,
		string(u.Role),
		u.CreatedAt.UTC(),
	)
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 { // duplicate key on email
		return domain.ErrEmailTaken
	}
	return err
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return r.getUser(ctx, getUserSQL, id)
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, getUserByEmailSQL, strings.ToLower(email))
}

func (r *Repo) getUser(ctx context.Context, query, arg string) (domain.User, error) {
	var u domain.User
	var role string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}
