package handlers

import (
	"html/template"
	"net/url"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
)

// PlayerRow is one table row with its team colours resolved
type PlayerRow struct {
	models.Player
	TeamSlug   string
	Style      models.TeamStyle
	Expanded   bool
	ToggleHref string
	Summary    template.HTML
}

// SortColumn is a clickable table header
type SortColumn struct {
	Field     models.SortField
	Label     string
	Href      string
	Indicator string
	Active    bool
}

// tableColumns is the header order of the players table
var tableColumns = []struct {
	field models.SortField
	label string
}{
	{models.SortByRank, "Rank"},
	{models.SortByName, "Name"},
	{models.SortByTeam, "Team"},
	{models.SortByGamesWon, "W"},
	{models.SortByGamesLost, "L"},
	{models.SortByGamesWonPercent, "Win %"},
	{models.SortByPtsWon, "Pts Won"},
	{models.SortByPtsLost, "Pts Lost"},
	{models.SortByPtsWonPercent, "Pts %"},
}

// listState is the URL-encoded state of a players or search listing
type listState struct {
	path     string
	params   url.Values
	sort     models.SortConfig
	expanded string
}

// href builds a link to the listing with sort and expanded overridden
func (s listState) href(sort models.SortConfig, expanded string) string {
	q := url.Values{}
	for k, v := range s.params {
		q[k] = v
	}
	q.Set("sort", string(sort.Field))
	q.Set("dir", string(sort.Direction))
	if expanded != "" {
		q.Set("expanded", expanded)
	}
	return s.path + "?" + q.Encode()
}

func (s listState) columns(options []models.SortOption) []SortColumn {
	cols := make([]SortColumn, 0, len(tableColumns))
	for _, c := range tableColumns {
		cols = append(cols, SortColumn{
			Field:     c.field,
			Label:     c.label,
			Href:      s.href(s.sort.Toggle(c.field, options), ""),
			Indicator: s.sort.Indicator(c.field),
			Active:    s.sort.Field == c.field,
		})
	}
	return cols
}

// rows decorates players; the expanded player's summary is filled by summaryFor
func (s listState) rows(players []models.Player, teams services.TeamService, summaryFor func(name string) template.HTML) []PlayerRow {
	rows := make([]PlayerRow, 0, len(players))
	for _, p := range players {
		row := PlayerRow{
			Player:   p,
			TeamSlug: teams.SlugFor(p.Team),
			Style:    teams.StyleFor(p.Team),
			Expanded: s.expanded != "" && p.Name == s.expanded,
		}
		if row.Expanded {
			row.ToggleHref = s.href(s.sort, "")
			if summaryFor != nil {
				row.Summary = summaryFor(p.Name)
			}
		} else {
			row.ToggleHref = s.href(s.sort, p.Name)
		}
		rows = append(rows, row)
	}
	return rows
}

// sortFromQuery reads sort/dir parameters. A valid field without a valid
// direction takes that field's default direction. ok is false when no valid
// sort field was given.
func sortFromQuery(q url.Values, options []models.SortOption) (models.SortConfig, bool) {
	field, ok := models.ParseSortField(q.Get("sort"))
	if !ok {
		return models.SortConfig{}, false
	}
	if dir, ok := models.ParseSortDirection(q.Get("dir")); ok {
		return models.SortConfig{Field: field, Direction: dir}, true
	}
	return models.SortConfig{}.Toggle(field, options), true
}
