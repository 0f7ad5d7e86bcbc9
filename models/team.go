package models

// TeamStyle holds the CSS classes used to theme a team
type TeamStyle struct {
	Text   string `json:"text"`
	Border string `json:"border"`
	Thead  string `json:"thead"`
	Glow   string `json:"glow"`
	Bg     string `json:"bg"`
}

// Team represents a Major League Pickleball team
type Team struct {
	Slug        string    `json:"slug"`
	DisplayName string    `json:"displayName"`
	APIName     string    `json:"apiName"` // name the stats API filters by
	Aliases     []string  `json:"aliases,omitempty"`
	Logo        string    `json:"logo"`
	Style       TeamStyle `json:"style"`
}

// Route returns the team detail page path
func (t Team) Route() string {
	return "/teams/" + t.Slug
}

// LogoPath returns the static path of the team logo
func (t Team) LogoPath() string {
	return "/static/teams/" + t.Logo
}

// String returns the display name
func (t Team) String() string {
	return t.DisplayName
}
