package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"grand_hotel/internal/domain"
)

const catalogKey = "rooms:catalog"

// QueryService serves the read side: the room catalog and filtered views of
// it. The catalog is cached wholesale and filtered per request, matching how
// the store of record exposes it (no server-side query surface worth pushing
// filters into).
type QueryService struct {
	rooms    domain.RoomRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RoomRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{rooms: r, cache: c, cacheTTL: ttl}
}

// SearchRooms loads the catalog (cache-aside) and applies the filter spec.
func (s *QueryService) SearchRooms(ctx context.Context, spec domain.FilterSpec) ([]domain.Room, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return domain.VisibleRooms(catalog, spec), nil
}

func (s *QueryService) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	key := fmt.Sprintf("room:%s", id)
	var room domain.Room
	if ok, _ := s.cache.Get(ctx, key, &room); ok {
		return room, nil
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	_ = s.cache.Set(ctx, key, room, int(s.cacheTTL.Seconds()))
	return room, nil
}

func (s *QueryService) catalog(ctx context.Context) ([]domain.Room, error) {
	var cached []domain.Room
	if ok, _ := s.cache.Get(ctx, catalogKey, &cached); ok {
		return cached, nil
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	// copy before caching to avoid aliasing the repo's backing array
	cp := make([]domain.Room, len(rooms))
	copy(cp, rooms)

	// optional size guard
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, catalogKey, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}
