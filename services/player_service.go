package services

import (
	"context"
	"encoding/json"
	"fmt"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"sync"

	"golang.org/x/crypto/blake2b"
)

var (
	_ PlayerService = (*APIPlayerService)(nil)
	_ PlayerService = (*DemoPlayerService)(nil)
)

// PlayerService interface defines methods for getting player data
type PlayerService interface {
	GetPlayers(ctx context.Context, query models.PlayerQuery) ([]models.Player, error)
	GetSummary(ctx context.Context, playerName string) (string, error)
	Predict(ctx context.Context, playerA, playerB string) (string, error)
	// Refresh reloads the full player list and reports whether it changed
	Refresh(ctx context.Context) (bool, error)
	HealthCheck(ctx context.Context) bool
}

// APIPlayerService serves player data from the stats API with a list cache in front
type APIPlayerService struct {
	api    *RallyAPIService
	cache  PlayerListCache
	logger *logging.Logger

	mu          sync.Mutex
	fingerprint [32]byte
}

// NewAPIPlayerService creates an API-backed player service.
// cache may be nil to disable list caching.
func NewAPIPlayerService(api *RallyAPIService, cache PlayerListCache) *APIPlayerService {
	return &APIPlayerService{
		api:    api,
		cache:  cache,
		logger: logging.WithPrefix("PlayerService"),
	}
}

// GetPlayers returns players matching query, served from cache when fresh
func (s *APIPlayerService) GetPlayers(ctx context.Context, query models.PlayerQuery) ([]models.Player, error) {
	key := query.CacheKey()
	if s.cache != nil {
		if players, ok := s.cache.Get(ctx, key); ok {
			s.logger.Debugf("Cache hit for %s (%d players)", key, len(players))
			return players, nil
		}
	}

	players, err := s.api.ListPlayers(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, players)
	}
	return players, nil
}

// GetSummary fetches a player summary from the API
func (s *APIPlayerService) GetSummary(ctx context.Context, playerName string) (string, error) {
	return s.api.GetSummary(ctx, playerName)
}

// Predict fetches a head-to-head prediction from the API
func (s *APIPlayerService) Predict(ctx context.Context, playerA, playerB string) (string, error) {
	return s.api.Predict(ctx, playerA, playerB)
}

// Refresh bypasses the cache, reloads the full list and updates the cache
func (s *APIPlayerService) Refresh(ctx context.Context) (bool, error) {
	players, err := s.api.ListPlayers(ctx, models.PlayerQuery{})
	if err != nil {
		return false, fmt.Errorf("refresh failed: %w", err)
	}

	sum, err := fingerprintPlayers(players)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		if err := s.cache.Purge(ctx); err != nil {
			s.logger.Warnf("Failed to purge list cache: %v", err)
		}
		s.cache.Set(ctx, models.PlayerQuery{}.CacheKey(), players)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := sum != s.fingerprint
	s.fingerprint = sum
	s.logger.Infof("Refreshed %d players (changed=%t)", len(players), changed)
	return changed, nil
}

// HealthCheck verifies the stats API is reachable
func (s *APIPlayerService) HealthCheck(ctx context.Context) bool {
	return s.api.HealthCheck(ctx)
}

// fingerprintPlayers hashes the canonical JSON encoding of players
func fingerprintPlayers(players []models.Player) ([32]byte, error) {
	data, err := json.Marshal(players)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to encode players for fingerprint: %w", err)
	}
	return blake2b.Sum256(data), nil
}
