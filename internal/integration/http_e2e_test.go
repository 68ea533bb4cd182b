//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "grand_hotel/internal/adapters/http_server"
	"grand_hotel/internal/adapters/payments"
	redisad "grand_hotel/internal/adapters/redis"
	"grand_hotel/internal/app"
	"grand_hotel/internal/auth"
	"grand_hotel/internal/domain"
	"grand_hotel/internal/notify"
	"grand_hotel/internal/shared"
	mysqlrepo "grand_hotel/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotel",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotel")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// Gateway stub: every charge settles, every refund is accepted.
func startGateway(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/charges", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"settled","transaction_id":"tx-e2e"}`))
	})
	mux.HandleFunc("/refunds", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"refunded"}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	buf, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func getJSON(t *testing.T, url, token string, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

func TestHTTP_EndToEnd_BookingLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	gatewayStub := startGateway(t)
	gw, err := payments.New(gatewayStub.URL, "test-key", 10)
	if err != nil {
		t.Fatalf("payments.New: %v", err)
	}

	for _, room := range shared.SampleRooms {
		if err := repo.UpsertRoom(ctx, room); err != nil {
			t.Fatalf("seed room %s: %v", room.ID, err)
		}
	}

	// Admin account is provisioned out of band, not via signup.
	adminHash, err := auth.HashPassword("admin-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := repo.CreateUser(ctx, domain.User{
		ID: "admin-1", Email: "admin@hotel.test", Name: "Admin",
		PasswordHash: adminHash, Role: domain.RoleAdmin, CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	const secret = "e2e-secret"
	notifier := notify.New()
	t.Cleanup(notifier.Close)

	q := app.NewQueryService(repo, cache, time.Minute)
	accounts := app.NewAccountService(repo, secret, time.Hour)
	bookings := app.NewBookingService(repo, repo, gw, notifier, cache, time.Minute)
	dash := app.NewDashboardService(repo, repo, cache, time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q, Bookings: bookings, Accounts: accounts, Dash: dash})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	events, unsub := notifier.Subscribe(8)
	defer unsub()

	// Signup + login.
	res := postJSON(t, ts.URL+"/v1/auth/signup", "", map[string]string{
		"email": "guest@hotel.test", "name": "Guest", "password": "guest-pass",
	})
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("signup status %d", res.StatusCode)
	}

	res = postJSON(t, ts.URL+"/v1/auth/login", "", map[string]string{
		"email": "guest@hotel.test", "password": "guest-pass",
	})
	var loginBody struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&loginBody); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	res.Body.Close()
	if loginBody.Token == "" {
		t.Fatalf("login returned empty token")
	}

	// Catalog filter: cheap rooms, price ascending.
	var roomsBody struct {
		Rooms []domain.Room `json:"rooms"`
		Count int           `json:"count"`
	}
	if code := getJSON(t, ts.URL+"/v1/rooms?max_price=300&sort=price-low", "", &roomsBody); code != http.StatusOK {
		t.Fatalf("list rooms status %d", code)
	}
	if roomsBody.Count != 3 || roomsBody.Rooms[0].Price != 149 {
		t.Fatalf("unexpected filter result: %+v", roomsBody)
	}

	// Bookings require auth.
	if code := getJSON(t, ts.URL+"/v1/bookings", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated bookings: want 401, got %d", code)
	}

	// Book far enough out that the 24h rule permits cancellation.
	checkIn := time.Now().UTC().AddDate(0, 0, 10).Truncate(time.Hour)
	res = postJSON(t, ts.URL+"/v1/bookings", loginBody.Token, map[string]any{
		"room_id":   "room-deluxe",
		"check_in":  checkIn,
		"check_out": checkIn.AddDate(0, 0, 3),
		"guests":    2,
	})
	var created struct {
		ID          string  `json:"id"`
		Reference   string  `json:"reference"`
		Status      string  `json:"status"`
		Nights      int     `json:"nights"`
		TotalPrice  float64 `json:"total_price"`
		Cancellable bool    `json:"cancellable"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create booking status %d", res.StatusCode)
	}
	if created.Status != string(domain.StatusConfirmed) || created.Nights != 3 || created.TotalPrice != 897 {
		t.Fatalf("unexpected booking: %+v", created)
	}
	if !created.Cancellable {
		t.Fatalf("fresh far-future booking should be cancellable")
	}

	select {
	case ev := <-events:
		if ev.Type != notify.BookingConfirmed {
			t.Fatalf("want confirmed event, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("no booking event published")
	}

	var mine struct {
		Count int `json:"count"`
	}
	if code := getJSON(t, ts.URL+"/v1/bookings", loginBody.Token, &mine); code != http.StatusOK {
		t.Fatalf("list bookings status %d", code)
	}
	if mine.Count != 1 {
		t.Fatalf("want 1 booking, got %d", mine.Count)
	}

	// Cancel inside the window.
	res = postJSON(t, ts.URL+"/v1/bookings/"+created.ID+"/cancel", loginBody.Token, nil)
	var cancelled struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cancelled); err != nil {
		t.Fatalf("decode cancel: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK || cancelled.Status != string(domain.StatusCancelled) {
		t.Fatalf("cancel: status %d body %+v", res.StatusCode, cancelled)
	}

	// Cancelling again is a state conflict.
	res = postJSON(t, ts.URL+"/v1/bookings/"+created.ID+"/cancel", loginBody.Token, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("second cancel: want 409, got %d", res.StatusCode)
	}

	// Dashboard: guests are locked out, admins get stats.
	if code := getJSON(t, ts.URL+"/v1/admin/dashboard", loginBody.Token, nil); code != http.StatusForbidden {
		t.Fatalf("guest dashboard: want 403, got %d", code)
	}

	res = postJSON(t, ts.URL+"/v1/auth/login", "", map[string]string{
		"email": "admin@hotel.test", "password": "admin-pass",
	})
	var adminLogin struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&adminLogin); err != nil {
		t.Fatalf("decode admin login: %v", err)
	}
	res.Body.Close()

	var stats domain.DashboardStats
	if code := getJSON(t, ts.URL+"/v1/admin/dashboard", adminLogin.Token, &stats); code != http.StatusOK {
		t.Fatalf("admin dashboard status %d", code)
	}
	if stats.TotalBookings != 1 || stats.CancelledCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
