package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"grand_hotel/internal/adapters/observability"
	redisad "grand_hotel/internal/adapters/redis"
	"grand_hotel/internal/domain"
	"grand_hotel/internal/shared"
	mysqlrepo "grand_hotel/internal/storage/mysql"
)

// Loads the sample room catalog and drops the cached catalog entry so the
// API serves the fresh rows on the next request.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.SeedWorkers).
		Int("rooms", len(shared.SampleRooms)).
		Msg("seed starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, room := range shared.SampleRooms {
		room := room

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(r domain.Room) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := repo.UpsertRoom(ctx, r); err != nil {
				log.Warn().Str("id", r.ID).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("id", r.ID).Msg("seed ok")
		}(room)
	}

	wg.Wait()

	if err := cache.Del(ctx, "rooms:catalog"); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
	log.Info().Msg("seeding completed")
}
