package services

import (
	"rally-metrics-go/models"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultSortOptions returns the columns offered in the players sort menu
func DefaultSortOptions() []models.SortOption {
	return []models.SortOption{
		{Field: models.SortByRank, Label: "Rank"},
		{Field: models.SortByGamesWon, Label: "Wins", IsDescending: true},
		{Field: models.SortByGamesLost, Label: "Losses", IsDescending: true},
		{Field: models.SortByGamesWonPercent, Label: "Win %", IsPercentage: true, IsDescending: true},
		{Field: models.SortByPtsWon, Label: "Points Won", IsDescending: true},
		{Field: models.SortByPtsLost, Label: "Points Lost", IsDescending: true},
		{Field: models.SortByPtsWonPercent, Label: "Points %", IsPercentage: true, IsDescending: true},
	}
}

// FilterByName keeps players whose name contains term, ignoring case.
// An empty term keeps everyone. The input slice is never modified.
func FilterByName(players []models.Player, term string) []models.Player {
	term = strings.ToLower(strings.TrimSpace(term))
	filtered := make([]models.Player, 0, len(players))
	for _, p := range players {
		if term == "" || strings.Contains(strings.ToLower(p.Name), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterByNameOrTeam keeps players whose name or team contains term, ignoring case
func FilterByNameOrTeam(players []models.Player, term string) []models.Player {
	term = strings.ToLower(strings.TrimSpace(term))
	filtered := make([]models.Player, 0, len(players))
	for _, p := range players {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Team), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterByTeam keeps players on team, compared case-insensitively
func FilterByTeam(players []models.Player, team string) []models.Player {
	team = strings.TrimSpace(team)
	filtered := make([]models.Player, 0, len(players))
	for _, p := range players {
		if team == "" || strings.EqualFold(strings.TrimSpace(p.Team), team) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// SortPlayers returns a sorted copy of players.
// Equal values keep their input order.
func SortPlayers(players []models.Player, cfg models.SortConfig) []models.Player {
	sorted := make([]models.Player, len(players))
	copy(sorted, players)

	if _, ok := models.ParseSortField(string(cfg.Field)); !ok {
		return sorted
	}
	desc := cfg.Direction == models.SortDesc

	sort.SliceStable(sorted, func(i, j int) bool {
		c := comparePlayers(&sorted[i], &sorted[j], cfg.Field)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

// comparePlayers returns -1, 0 or 1 for the given field
func comparePlayers(a, b *models.Player, field models.SortField) int {
	if field.IsText() {
		return strings.Compare(a.Text(field), b.Text(field))
	}
	av, bv := a.Value(field), b.Value(field)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

// SortByName returns players ordered alphabetically using English collation
func SortByName(players []models.Player) []models.Player {
	sorted := make([]models.Player, len(players))
	copy(sorted, players)

	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})
	return sorted
}

// FindPlayer returns the player with exactly the given name, or nil
func FindPlayer(players []models.Player, name string) *models.Player {
	for i := range players {
		if players[i].Name == name {
			return &players[i]
		}
	}
	return nil
}
