package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "grand_hotel/internal/adapters/http_server"
	"grand_hotel/internal/adapters/observability"
	"grand_hotel/internal/adapters/payments"
	redisad "grand_hotel/internal/adapters/redis"
	"grand_hotel/internal/app"
	"grand_hotel/internal/notify"
	"grand_hotel/internal/shared"
	mysqlrepo "grand_hotel/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	gateway, err := payments.New(cfg.PaymentsBase, cfg.PaymentsKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("payments client init failed")
	}

	notifier := notify.New()
	defer notifier.Close()

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	accounts := app.NewAccountService(repo, cfg.JWTSecret, cfg.TokenTTL)
	bookings := app.NewBookingService(repo, repo, gateway, notifier, cache, cfg.CacheTTL)
	dash := app.NewDashboardService(repo, repo, cache, cfg.CacheTTL)

	// booking events land in the log until a real delivery channel exists
	events, unsub := notifier.Subscribe(64)
	defer unsub()
	go func() {
		for ev := range events {
			log.Info().Str("event", string(ev.Type)).Str("title", ev.Title).Msg(ev.Message)
		}
	}()

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Bookings: bookings, Accounts: accounts, Dash: dash})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("shutdown complete")
}
