package services

import (
	"math/rand"
	"rally-metrics-go/models"
	"sort"
	"strings"
)

// NeutralTeamStyle is used for players whose team is not in the directory
var NeutralTeamStyle = models.TeamStyle{
	Text:   "text-gray-700",
	Border: "border-gray-300",
	Thead:  "bg-gray-100 text-gray-800",
	Glow:   "bg-gray-300",
	Bg:     "bg-white",
}

func teamStyle(color, shade, theadText, bg string) models.TeamStyle {
	c := color + "-" + shade
	return models.TeamStyle{
		Text:   "text-" + c,
		Border: "border-" + c,
		Thead:  "bg-" + c + "/20 " + theadText,
		Glow:   "bg-" + c,
		Bg:     bg,
	}
}

// GetTeamData returns the Major League Pickleball teams keyed by slug
func GetTeamData() map[string]models.Team {
	return map[string]models.Team{
		"atlanta-bouncers": {
			DisplayName: "Atlanta Bouncers", APIName: "Atlanta Bouncers",
			Logo: "atlanta_bouncers.png", Style: teamStyle("orange", "500", "text-orange-900", "bg-orange-100"),
		},
		"brooklyn-pickleball-team": {
			DisplayName: "Brooklyn Pickleball Team", APIName: "Brooklyn Pickleball Team",
			Logo: "brooklyn_pickleball_team.png", Style: teamStyle("gray", "700", "text-gray-700", "bg-gray-100"),
		},
		"carolina-hogs": {
			DisplayName: "Carolina Hogs", APIName: "Carolina Hogs",
			Logo: "carolina_hogs.png", Style: teamStyle("red", "500", "text-red-900", "bg-red-100"),
		},
		"chicago-slice": {
			DisplayName: "Chicago Slice", APIName: "Chicago Slice",
			Logo: "chicago_slice.png", Style: teamStyle("red", "600", "text-red-600", "bg-red-100"),
		},
		"columbus-sliders": {
			DisplayName: "Columbus Sliders", APIName: "Columbus Sliders",
			Logo: "columbus_sliders.png", Style: teamStyle("blue", "600", "text-blue-600", "bg-blue-100"),
		},
		"dallas-flash": {
			DisplayName: "Dallas Flash", APIName: "Dallas Flash Pickleball",
			Logo: "dallas_flash.png", Style: teamStyle("sky", "500", "text-sky-900", "bg-sky-100"),
		},
		"la-mad-drops": {
			DisplayName: "Los Angeles Mad Drops", APIName: "Los Angeles Mad Drops",
			Aliases: []string{"LA Mad Drops"},
			Logo:    "la_mad_drops.png", Style: teamStyle("teal", "500", "text-teal-900", "bg-teal-100"),
		},
		"miami-pickleball-team": {
			DisplayName: "Miami Pickleball Club", APIName: "Miami Pickleball Club",
			Logo: "miami_pickleball_team.png", Style: teamStyle("pink", "500", "text-pink-900", "bg-pink-100"),
		},
		"nj-fives": {
			DisplayName: "New Jersey 5s", APIName: "New Jersey 5S",
			Aliases: []string{"New Jersey Fives", "NJ 5s"},
			Logo:    "nj_fives.png", Style: teamStyle("indigo", "600", "text-indigo-600", "bg-indigo-100"),
		},
		"orlando-squeeze": {
			DisplayName: "Orlando Squeeze", APIName: "Orlando Squeeze",
			Logo: "orlando_squeeze.png", Style: teamStyle("yellow", "500", "text-yellow-900", "bg-yellow-100"),
		},
		"phoenix-flames": {
			DisplayName: "Phoenix Flames", APIName: "Phoenix Flames",
			Logo: "phoenix_flames.png", Style: teamStyle("red", "500", "text-red-900", "bg-red-100"),
		},
		"socal-hard-eights": {
			DisplayName: "SoCal Hard Eights", APIName: "Socal Hard Eights",
			Logo: "socal_hard_eights.png", Style: teamStyle("sky", "500", "text-sky-900", "bg-sky-100"),
		},
		"stl-shock": {
			DisplayName: "St. Louis Shock", APIName: "St. Louis Shock",
			Aliases: []string{"St Louis Shock"},
			Logo:    "stl_shock.png", Style: teamStyle("blue", "600", "text-blue-600", "bg-blue-100"),
		},
		"texas-ranchers": {
			DisplayName: "Texas Ranchers", APIName: "Texas Ranchers",
			Logo: "texas_ranchers.png", Style: teamStyle("blue", "600", "text-blue-600", "bg-blue-100"),
		},
		"utah-black-diamonds": {
			DisplayName: "Utah Black Diamonds", APIName: "Utah Black Diamonds",
			Logo: "utah_black_diamonds.png", Style: teamStyle("gray", "700", "text-gray-700", "bg-gray-100"),
		},
		"new-york-hustlers": {
			DisplayName: "New York Hustlers", APIName: "New York Hustlers",
			Logo: "new_york_hustlers.png", Style: teamStyle("cyan", "500", "text-cyan-900", "bg-cyan-100"),
		},
	}
}

// TeamService interface for team lookups
type TeamService interface {
	GetAllTeams() []models.Team
	GetTeamBySlug(slug string) (*models.Team, bool)
	GetTeamByName(name string) (*models.Team, bool)
	SlugFor(name string) string
	StyleFor(name string) models.TeamStyle
	RandomPair(rng *rand.Rand) (models.Team, models.Team)
}

// StaticTeamService implements TeamService with the static MLP team table
type StaticTeamService struct {
	teams  []models.Team
	bySlug map[string]int
	byName map[string]int
}

// NewStaticTeamService creates a new static team service
func NewStaticTeamService() *StaticTeamService {
	teamData := GetTeamData()
	teams := make([]models.Team, 0, len(teamData))
	for slug, team := range teamData {
		team.Slug = slug
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].DisplayName < teams[j].DisplayName
	})

	s := &StaticTeamService{
		teams:  teams,
		bySlug: make(map[string]int, len(teams)),
		byName: make(map[string]int, len(teams)*2),
	}
	for i, team := range teams {
		s.bySlug[team.Slug] = i
		s.byName[normalizeTeamName(team.DisplayName)] = i
		s.byName[normalizeTeamName(team.APIName)] = i
		for _, alias := range team.Aliases {
			s.byName[normalizeTeamName(alias)] = i
		}
	}
	return s
}

func normalizeTeamName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// GetAllTeams returns all teams sorted by display name
func (s *StaticTeamService) GetAllTeams() []models.Team {
	out := make([]models.Team, len(s.teams))
	copy(out, s.teams)
	return out
}

// GetTeamBySlug returns a team by its URL slug
func (s *StaticTeamService) GetTeamBySlug(slug string) (*models.Team, bool) {
	i, ok := s.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, false
	}
	team := s.teams[i]
	return &team, true
}

// GetTeamByName resolves a backend team name (display name, API name or alias)
func (s *StaticTeamService) GetTeamByName(name string) (*models.Team, bool) {
	i, ok := s.byName[normalizeTeamName(name)]
	if !ok {
		return nil, false
	}
	team := s.teams[i]
	return &team, true
}

// SlugFor returns the slug for a backend team name, or "" if unknown
func (s *StaticTeamService) SlugFor(name string) string {
	if team, ok := s.GetTeamByName(name); ok {
		return team.Slug
	}
	return ""
}

// StyleFor returns the team's style, falling back to NeutralTeamStyle
func (s *StaticTeamService) StyleFor(name string) models.TeamStyle {
	if team, ok := s.GetTeamByName(name); ok {
		return team.Style
	}
	return NeutralTeamStyle
}

// RandomPair picks two distinct teams for the home page cards
func (s *StaticTeamService) RandomPair(rng *rand.Rand) (models.Team, models.Team) {
	if len(s.teams) < 2 {
		return s.teams[0], s.teams[0]
	}
	i := rng.Intn(len(s.teams))
	j := rng.Intn(len(s.teams) - 1)
	if j >= i {
		j++
	}
	return s.teams[i], s.teams[j]
}
