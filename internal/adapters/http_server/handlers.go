// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"grand_hotel/internal/app"
	"grand_hotel/internal/chat"
	"grand_hotel/internal/domain"
)

type Handlers struct {
	Q        *app.QueryService
	Bookings *app.BookingService
	Accounts *app.AccountService
	Dash     *app.DashboardService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/rooms", h.listRooms)
	s.mux.Get("/v1/rooms/{id}", h.getRoom)

	s.mux.Post("/v1/auth/signup", h.signup)
	s.mux.Post("/v1/auth/login", h.login)

	s.mux.Post("/v1/chat", h.chat)

	s.mux.Group(func(g chi.Router) {
		g.Use(Auth(h.Accounts))
		g.Get("/v1/bookings", h.listBookings)
		g.Post("/v1/bookings", h.createBooking)
		g.Get("/v1/bookings/{id}", h.getBooking)
		g.Post("/v1/bookings/{id}/cancel", h.cancelBooking)

		g.Group(func(a chi.Router) {
			a.Use(AdminOnly)
			a.Get("/v1/admin/dashboard", h.dashboard)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- rooms ----

func filterFromQuery(r *http.Request) (domain.FilterSpec, error) {
	q := r.URL.Query()
	spec := domain.FilterSpec{
		SearchTerm: q.Get("q"),
		MaxPrice:   math.MaxFloat64,
		Sort:       domain.SortRecommended,
	}

	parseFloat := func(key string, dst *float64) error {
		s := q.Get(key)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return errors.New(key + " must be a non-negative number")
		}
		*dst = f
		return nil
	}
	if err := parseFloat("min_price", &spec.MinPrice); err != nil {
		return spec, err
	}
	if err := parseFloat("max_price", &spec.MaxPrice); err != nil {
		return spec, err
	}
	if err := parseFloat("min_rating", &spec.MinRating); err != nil {
		return spec, err
	}
	if s := q.Get("guests"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return spec, errors.New("guests must be a non-negative integer")
		}
		spec.MinGuests = n
	}
	if s := q.Get("amenities"); s != "" {
		for _, tag := range strings.Split(s, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				spec.RequiredAmenities = append(spec.RequiredAmenities, tag)
			}
		}
	}
	if s := q.Get("sort"); s != "" {
		switch k := domain.SortKey(s); k {
		case domain.SortRecommended, domain.SortPriceAsc, domain.SortPriceDesc, domain.SortRatingDesc:
			spec.Sort = k
		default:
			return spec, errors.New("sort must be one of recommended, price-low, price-high, rating")
		}
	}
	return spec, nil
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	spec, err := filterFromQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	rooms, err := h.Q.SearchRooms(r.Context(), spec)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal", "could not load rooms")
		return
	}
	writeCached(w, r, map[string]any{"rooms": rooms, "count": len(rooms)})
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.Q.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "room not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal", "could not load room")
		return
	}
	writeCached(w, r, room)
}

// ---- auth ----

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func viewUser(u domain.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "email and password are required")
		return
	}
	u, err := h.Accounts.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeProblem(w, http.StatusConflict, "Email taken", "an account with this email already exists")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal", "could not create account")
		return
	}
	writeJSON(w, http.StatusCreated, viewUser(u))
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON")
		return
	}
	token, u, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Same response for unknown email and wrong password.
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": viewUser(u)})
}

// ---- bookings ----

type bookingView struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	RoomID      string    `json:"room_id"`
	RoomName    string    `json:"room_name"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	Guests      int       `json:"guests"`
	Nights      int       `json:"nights"`
	TotalPrice  float64   `json:"total_price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Cancellable bool      `json:"cancellable"`
}

func (h *Handlers) viewBooking(b domain.Booking) bookingView {
	return bookingView{
		ID:          b.ID,
		Reference:   b.Reference,
		RoomID:      b.RoomID,
		RoomName:    b.RoomName,
		CheckIn:     b.CheckIn,
		CheckOut:    b.CheckOut,
		Guests:      b.Guests,
		Nights:      domain.Nights(b.CheckIn, b.CheckOut),
		TotalPrice:  b.TotalPrice,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		Cancellable: h.Bookings.IsCancellable(b),
	}
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	claims := callerClaims(r)
	var req struct {
		RoomID   string    `json:"room_id"`
		CheckIn  time.Time `json:"check_in"`
		CheckOut time.Time `json:"check_out"`
		Guests   int       `json:"guests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON")
		return
	}
	b, err := h.Bookings.CreateBooking(r.Context(), app.CreateBookingInput{
		UserID:   claims.UserID,
		RoomID:   req.RoomID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeProblem(w, http.StatusNotFound, "Not Found", "room not found")
		case errors.Is(err, app.ErrBadStay):
			writeProblem(w, http.StatusBadRequest, "Invalid stay", "check-out must be after check-in")
		case errors.Is(err, app.ErrTooManyGuests):
			writeProblem(w, http.StatusBadRequest, "Too many guests", "guest count exceeds room capacity")
		case errors.Is(err, app.ErrRoomUnavailable):
			writeProblem(w, http.StatusConflict, "Room unavailable", "room is not bookable right now")
		case errors.Is(err, domain.ErrPaymentDeclined):
			writeProblem(w, http.StatusPaymentRequired, "Payment declined", "charge was declined")
		default:
			writeProblem(w, http.StatusInternalServerError, "Internal", "could not create booking")
		}
		return
	}
	writeJSON(w, http.StatusCreated, h.viewBooking(b))
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	claims := callerClaims(r)
	bs, err := h.Bookings.ListUserBookings(r.Context(), claims.UserID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal", "could not load bookings")
		return
	}
	views := make([]bookingView, 0, len(bs))
	for _, b := range bs {
		views = append(views, h.viewBooking(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": views, "count": len(views)})
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	claims := callerClaims(r)
	b, err := h.Bookings.GetBooking(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role == string(domain.RoleAdmin))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, app.ErrForbidden) {
			// Hide existence from non-owners.
			writeProblem(w, http.StatusNotFound, "Not Found", "booking not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal", "could not load booking")
		return
	}
	writeJSON(w, http.StatusOK, h.viewBooking(b))
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	claims := callerClaims(r)
	b, err := h.Bookings.CancelBooking(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, app.ErrForbidden):
			writeProblem(w, http.StatusNotFound, "Not Found", "booking not found")
		case errors.Is(err, domain.ErrCancelTooLate):
			writeProblem(w, http.StatusConflict, "Too late to cancel", "bookings can only be cancelled more than 24 hours before check-in")
		case errors.Is(err, domain.ErrCancelInvalidState):
			writeProblem(w, http.StatusConflict, "Not cancellable", "only confirmed bookings can be cancelled")
		default:
			writeProblem(w, http.StatusInternalServerError, "Internal", "could not cancel booking")
		}
		return
	}
	writeJSON(w, http.StatusOK, h.viewBooking(b))
}

// ---- chat ----

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "message is required")
		return
	}
	writeJSON(w, http.StatusOK, chat.Respond(req.Message, time.Now()))
}

// ---- admin ----

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	window := 30
	if s := r.URL.Query().Get("window_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 365 {
			writeProblem(w, http.StatusBadRequest, "Invalid window", "window_days must be an integer between 1 and 365")
			return
		}
		window = n
	}
	stats, err := h.Dash.Stats(r.Context(), window)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal", "could not compute dashboard")
		return
	}
	writeCached(w, r, stats)
}
