package services

import (
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"strconv"
	"strings"
)

//go:embed data/mlp_stats.csv
var demoStatsCSV string

// DemoPlayerService serves a built-in stats snapshot when the API is unavailable
type DemoPlayerService struct {
	players []models.Player
	logger  *logging.Logger
}

// NewDemoPlayerService creates a demo service from the embedded stats snapshot
func NewDemoPlayerService() (*DemoPlayerService, error) {
	players, err := ParsePlayerCSV(strings.NewReader(demoStatsCSV))
	if err != nil {
		return nil, fmt.Errorf("failed to load demo stats: %w", err)
	}
	return NewDemoPlayerServiceWithPlayers(players), nil
}

// NewDemoPlayerServiceWithPlayers creates a demo service over the given players
func NewDemoPlayerServiceWithPlayers(players []models.Player) *DemoPlayerService {
	logger := logging.WithPrefix("DemoPlayerService")
	logger.Infof("Serving %d demo players", len(players))
	return &DemoPlayerService{players: players, logger: logger}
}

// ParsePlayerCSV reads the MLP standings export. The first row is a header:
// Name,Rank,Team,Games Won,Games Lost,Games Won Percent,Pts Won,Pts Lost,Pts Won Percent
func ParsePlayerCSV(r io.Reader) ([]models.Player, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 9
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return []models.Player{}, nil
	}

	players := make([]models.Player, 0, len(records)-1)
	for i, line := range records[1:] {
		p, err := parsePlayerRecord(line)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", i+2, err)
		}
		players = append(players, p)
	}
	return players, nil
}

func parsePlayerRecord(line []string) (models.Player, error) {
	ints := make([]int, 0, 5)
	for _, idx := range []int{1, 3, 4, 6, 7} {
		v, err := strconv.Atoi(strings.TrimSpace(line[idx]))
		if err != nil {
			return models.Player{}, fmt.Errorf("column %d: %w", idx+1, err)
		}
		ints = append(ints, v)
	}
	gamesPct, err := models.ParsePercent(line[5])
	if err != nil {
		return models.Player{}, err
	}
	ptsPct, err := models.ParsePercent(line[8])
	if err != nil {
		return models.Player{}, err
	}

	return models.Player{
		Name:            strings.TrimSpace(line[0]),
		Rank:            ints[0],
		Team:            strings.TrimSpace(line[2]),
		GamesWon:        ints[1],
		GamesLost:       ints[2],
		GamesWonPercent: gamesPct,
		PtsWon:          ints[3],
		PtsLost:         ints[4],
		PtsWonPercent:   ptsPct,
	}, nil
}

// GetPlayers filters the snapshot the same way the stats API does:
// team is a case-insensitive exact match, name a case-insensitive substring
func (d *DemoPlayerService) GetPlayers(_ context.Context, query models.PlayerQuery) ([]models.Player, error) {
	players := d.players
	if strings.TrimSpace(query.Team) != "" {
		players = FilterByTeam(players, query.Team)
	}
	return FilterByName(players, query.Name), nil
}

func (d *DemoPlayerService) find(name string) *models.Player {
	for i := range d.players {
		if strings.EqualFold(d.players[i].Name, strings.TrimSpace(name)) {
			return &d.players[i]
		}
	}
	return nil
}

// GetSummary builds a short profile from the player's record
func (d *DemoPlayerService) GetSummary(_ context.Context, playerName string) (string, error) {
	p := d.find(playerName)
	if p == nil {
		return "Player not found", nil
	}

	var style string
	switch {
	case p.PtsWonPercent >= 54:
		style = "controls rallies and rarely gives away cheap points"
	case p.PtsWonPercent >= 50:
		style = "plays a patient, balanced game and wins the long exchanges"
	default:
		style = "takes risks at the kitchen line that do not always pay off"
	}

	var advice string
	switch {
	case p.GamesWonPercent >= 60:
		advice = "You should draft " + p.Name + " early; the win rate is among the best in the league."
	case p.GamesWonPercent >= 45:
		advice = "You should consider " + p.Name + " as a solid mid-round pick."
	default:
		advice = "You should leave " + p.Name + " on the bench until the form improves."
	}

	return fmt.Sprintf("%s of the %s %s. Ranked #%d this season.\n\n"+
		"Across %d games the record stands at %d wins and %d losses (%s), with %s of points won.\n\n%s",
		p.Name, p.Team, style, p.Rank,
		p.GamesPlayed(), p.GamesWon, p.GamesLost, p.GamesWonPercent, p.PtsWonPercent,
		advice), nil
}

// Predict picks the player with the better win rate, then points rate
func (d *DemoPlayerService) Predict(_ context.Context, playerA, playerB string) (string, error) {
	a, b := d.find(playerA), d.find(playerB)
	if a == nil || b == nil {
		return "", fmt.Errorf("unknown player in matchup %q vs %q", playerA, playerB)
	}

	winner, loser := a, b
	if b.GamesWonPercent > a.GamesWonPercent ||
		(b.GamesWonPercent == a.GamesWonPercent && b.PtsWonPercent > a.PtsWonPercent) {
		winner, loser = b, a
	}

	margin := float64(winner.PtsWonPercent - loser.PtsWonPercent)
	closeness := "a comfortable win"
	if margin < 2 {
		closeness = "a tight match that could go either way"
	}

	return fmt.Sprintf("%s is favored over %s: %s win rate against %s, %s points won against %s. Expect %s.",
		winner.Name, loser.Name,
		winner.GamesWonPercent, loser.GamesWonPercent,
		winner.PtsWonPercent, loser.PtsWonPercent,
		closeness), nil
}

// Refresh reports no change; the snapshot is static
func (d *DemoPlayerService) Refresh(_ context.Context) (bool, error) {
	return false, nil
}

// HealthCheck always succeeds for the built-in snapshot
func (d *DemoPlayerService) HealthCheck(_ context.Context) bool {
	return true
}
