package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Percent is a win/points percentage as reported by the stats API.
// The API is not consistent about the wire type, so it decodes from a
// JSON number, a numeric string, or a string with a trailing "%".
type Percent float64

// UnmarshalJSON normalizes the different percentage encodings
func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("percent: %w", err)
		}
		parsed, err := ParsePercent(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("percent: invalid number %s: %w", data, err)
	}
	*p = Percent(f)
	return nil
}

// ParsePercent parses "62.5", "62.5%" or "" (zero)
func ParsePercent(s string) (Percent, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("percent: invalid value %q: %w", s, err)
	}
	return Percent(f), nil
}

// String formats the percentage with one decimal, e.g. "62.5%"
func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64) + "%"
}

// Player represents one row of statistics for a professional pickleball athlete.
// Name is the unique key.
type Player struct {
	Name            string  `json:"name" bson:"name"`
	Rank            int     `json:"rank" bson:"rank"`
	Team            string  `json:"team" bson:"team"`
	GamesWon        int     `json:"games_won" bson:"games_won"`
	GamesLost       int     `json:"games_lost" bson:"games_lost"`
	GamesWonPercent Percent `json:"games_won_percent" bson:"games_won_percent"`
	PtsWon          int     `json:"pts_won" bson:"pts_won"`
	PtsLost         int     `json:"pts_lost" bson:"pts_lost"`
	PtsWonPercent   Percent `json:"pts_won_percent" bson:"pts_won_percent"`
}

// GamesPlayed returns the total number of games in the player's record
func (p *Player) GamesPlayed() int {
	return p.GamesWon + p.GamesLost
}

// Value returns the numeric value of a sortable stat field.
// Text fields (name, team) return 0.
func (p *Player) Value(field SortField) float64 {
	switch field {
	case SortByRank:
		return float64(p.Rank)
	case SortByGamesWon:
		return float64(p.GamesWon)
	case SortByGamesLost:
		return float64(p.GamesLost)
	case SortByGamesWonPercent:
		return float64(p.GamesWonPercent)
	case SortByPtsWon:
		return float64(p.PtsWon)
	case SortByPtsLost:
		return float64(p.PtsLost)
	case SortByPtsWonPercent:
		return float64(p.PtsWonPercent)
	default:
		return 0
	}
}

// Text returns the string value of a text field (name, team)
func (p *Player) Text(field SortField) string {
	switch field {
	case SortByName:
		return p.Name
	case SortByTeam:
		return p.Team
	default:
		return ""
	}
}

// PlayerQuery holds the optional filters accepted by the player list endpoint
type PlayerQuery struct {
	Name string `json:"name,omitempty"`
	Team string `json:"team,omitempty"`
}

// IsEmpty returns true when no filter is set
func (q PlayerQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Name) == "" && strings.TrimSpace(q.Team) == ""
}

// CacheKey returns a stable key for list caches
func (q PlayerQuery) CacheKey() string {
	return "name=" + strings.ToLower(strings.TrimSpace(q.Name)) +
		"&team=" + strings.ToLower(strings.TrimSpace(q.Team))
}

// PredictionRequest is the body sent to the match predictor endpoint
type PredictionRequest struct {
	PlayerA string `json:"playerA"`
	PlayerB string `json:"playerB"`
}

// Validate checks that two distinct players were chosen
func (r PredictionRequest) Validate() error {
	a := strings.TrimSpace(r.PlayerA)
	b := strings.TrimSpace(r.PlayerB)
	if a == "" || b == "" {
		return fmt.Errorf("select two players")
	}
	if a == b {
		return fmt.Errorf("select two different players")
	}
	return nil
}
