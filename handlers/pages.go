package handlers

import (
	"html/template"
	"math/rand"
	"net/http"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
	"sync"
)

// PageHandler serves the mostly static pages: home, about and the team pages
type PageHandler struct {
	renderer
	playerService services.PlayerService
	teams         services.TeamService
	demo          bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewPageHandler creates a new page handler. rng picks the home page teams.
func NewPageHandler(templates *template.Template, playerService services.PlayerService, teams services.TeamService, rng *rand.Rand, demo bool) *PageHandler {
	return &PageHandler{
		renderer:      renderer{templates: templates, logger: logging.WithPrefix("PageHandler")},
		playerService: playerService,
		teams:         teams,
		rng:           rng,
		demo:          demo,
	}
}

// FeatureCard is one of the three cards on the home page
type FeatureCard struct {
	Title       string
	Description string
	Href        string
	Style       models.TeamStyle
	Team        *models.Team
	IsAI        bool
}

// HomePage is the data for home.html
type HomePage struct {
	Page
	Left  models.Team
	Right models.Team
	Cards []FeatureCard
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.rngMu.Lock()
	left, right := h.teams.RandomPair(h.rng)
	h.rngMu.Unlock()

	h.render(w, http.StatusOK, "home.html", HomePage{
		Page:  newPage("Rally Metrics", "home", h.demo),
		Left:  left,
		Right: right,
		Cards: []FeatureCard{
			{
				Title:       "Accurate Stats",
				Description: "Trust the most precise and up-to-date player statistics",
				Href:        left.Route(),
				Style:       left.Style,
				Team:        &left,
			},
			{
				Title:       "AI-Powered",
				Description: "Gain an edge with AI-powered fantasy recommendations",
				Href:        "/predictor",
				Style:       services.NeutralTeamStyle,
				IsAI:        true,
			},
			{
				Title:       "Team Insights",
				Description: "Dive deep into team analytics and player dynamics",
				Href:        right.Route(),
				Style:       right.Style,
				Team:        &right,
			},
		},
	})
}

// About handles GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about.html", newPage("About", "about", h.demo))
}

// TeamsPage is the data for teams.html
type TeamsPage struct {
	Page
	Teams []models.Team
}

// Teams handles GET /teams
func (h *PageHandler) Teams(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "teams.html", TeamsPage{
		Page:  newPage("Teams", "teams", h.demo),
		Teams: h.teams.GetAllTeams(),
	})
}

// TeamPage is the data for team.html
type TeamPage struct {
	Page
	Team    models.Team
	Players []models.Player
}

// Team handles GET /teams/{slug}
func (h *PageHandler) Team(w http.ResponseWriter, r *http.Request) {
	slug := pathVar(r, "slug")
	team, ok := h.teams.GetTeamBySlug(slug)
	if !ok {
		h.logger.Debugf("Unknown team slug %q", slug)
		h.notFound(w, h.demo)
		return
	}

	players, err := h.playerService.GetPlayers(r.Context(), models.PlayerQuery{Team: team.APIName})
	if err != nil {
		h.logger.Errorf("Failed to load players for %s: %v", team.APIName, err)
		players = nil
	}

	h.render(w, http.StatusOK, "team.html", TeamPage{
		Page:    newPage(team.DisplayName, "teams", h.demo),
		Team:    *team,
		Players: services.SortPlayers(players, models.DefaultSortConfig()),
	})
}

// NotFound renders the 404 page for unmatched routes
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, h.demo)
}
