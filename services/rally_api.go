package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"strings"
	"time"
)

const (
	playerPath   = "/api/v1/player"
	maxTextBytes = 64 << 10
)

// RallyAPIService handles Rally Metrics stats API interactions
type RallyAPIService struct {
	client  *http.Client
	baseURL string
	logger  *logging.Logger
}

// NewRallyAPIService creates a new stats API client
func NewRallyAPIService(baseURL string, timeout time.Duration) *RallyAPIService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RallyAPIService{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:  logging.WithPrefix("RallyAPI"),
	}
}

// BaseURL returns the configured API base URL
func (s *RallyAPIService) BaseURL() string {
	return s.baseURL
}

// ListPlayers fetches players, optionally filtered by name and team.
// An empty response body is treated as an empty list.
func (s *RallyAPIService) ListPlayers(ctx context.Context, query models.PlayerQuery) ([]models.Player, error) {
	params := url.Values{}
	if name := strings.TrimSpace(query.Name); name != "" {
		params.Set("name", name)
	}
	if team := strings.TrimSpace(query.Team); team != "" {
		params.Set("team", team)
	}

	endpoint := s.baseURL + playerPath
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	s.logger.Debugf("Fetching players from %s", endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build player request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("player API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read player response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []models.Player{}, nil
	}

	var players []models.Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("failed to decode player response: %w", err)
	}
	if players == nil {
		players = []models.Player{}
	}

	s.logger.Debugf("Received %d players", len(players))
	return players, nil
}

// GetSummary fetches the plain-text summary for a player
func (s *RallyAPIService) GetSummary(ctx context.Context, playerName string) (string, error) {
	endpoint := fmt.Sprintf("%s%s/%s/summary", s.baseURL, playerPath, url.PathEscape(playerName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build summary request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	return s.doText(req, "summary")
}

// Predict asks the API for a head-to-head prediction between two players
func (s *RallyAPIService) Predict(ctx context.Context, playerA, playerB string) (string, error) {
	payload, err := json.Marshal(models.PredictionRequest{PlayerA: playerA, PlayerB: playerB})
	if err != nil {
		return "", fmt.Errorf("failed to encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+playerPath+"/predict", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")

	return s.doText(req, "prediction")
}

// doText executes req and returns the body as text
func (s *RallyAPIService) doText(req *http.Request, what string) (string, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s API returned status %d", what, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s response: %w", what, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// HealthCheck verifies the stats API is reachable
func (s *RallyAPIService) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+playerPath+"?name=__healthcheck__", nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warnf("Health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
