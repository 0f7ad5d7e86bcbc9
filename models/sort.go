package models

// SortField identifies a sortable player column
type SortField string

const (
	SortByName            SortField = "name"
	SortByTeam            SortField = "team"
	SortByRank            SortField = "rank"
	SortByGamesWon        SortField = "gamesWon"
	SortByGamesLost       SortField = "gamesLost"
	SortByGamesWonPercent SortField = "gamesWonPercent"
	SortByPtsWon          SortField = "ptsWon"
	SortByPtsLost         SortField = "ptsLost"
	SortByPtsWonPercent   SortField = "ptsWonPercent"
)

// SortDirection is either ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortField validates a field name coming from a query string
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(s); f {
	case SortByName, SortByTeam, SortByRank, SortByGamesWon, SortByGamesLost,
		SortByGamesWonPercent, SortByPtsWon, SortByPtsLost, SortByPtsWonPercent:
		return f, true
	}
	return "", false
}

// ParseSortDirection validates a direction coming from a query string
func ParseSortDirection(s string) (SortDirection, bool) {
	switch d := SortDirection(s); d {
	case SortAsc, SortDesc:
		return d, true
	}
	return "", false
}

// IsText returns true for fields compared as strings
func (f SortField) IsText() bool {
	return f == SortByName || f == SortByTeam
}

// IsPercent returns true for percentage columns
func (f SortField) IsPercent() bool {
	return f == SortByGamesWonPercent || f == SortByPtsWonPercent
}

// Opposite flips the direction
func (d SortDirection) Opposite() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// SortOption describes a column offered in the sort menu
type SortOption struct {
	Field        SortField
	Label        string
	IsPercentage bool
	IsDescending bool // default direction when first selected
}

// DefaultDirection is the direction used when the option is newly selected
func (o SortOption) DefaultDirection() SortDirection {
	if o.IsDescending {
		return SortDesc
	}
	return SortAsc
}

// SortConfig is the current sort field and direction
type SortConfig struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortConfig sorts by rank ascending
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: SortByRank, Direction: SortAsc}
}

// Toggle returns the config after the user picks field.
// Picking the current field flips the direction; picking another field
// selects it with its option's default direction.
func (c SortConfig) Toggle(field SortField, options []SortOption) SortConfig {
	if _, ok := ParseSortField(string(field)); !ok {
		return c
	}
	if c.Field == field {
		return SortConfig{Field: field, Direction: c.Direction.Opposite()}
	}
	direction := SortAsc
	for _, opt := range options {
		if opt.Field == field {
			direction = opt.DefaultDirection()
			break
		}
	}
	return SortConfig{Field: field, Direction: direction}
}

// Indicator returns the arrow shown next to the active column
func (c SortConfig) Indicator(field SortField) string {
	if c.Field != field {
		return ""
	}
	if c.Direction == SortAsc {
		return "↑"
	}
	return "↓"
}
