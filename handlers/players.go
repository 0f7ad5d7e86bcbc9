package handlers

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"rally-metrics-go/logging"
	"rally-metrics-go/middleware"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
	"strings"
)

// PlayerHandler serves the players listing, search, summary fragments and
// the JSON player list
type PlayerHandler struct {
	renderer
	playerService services.PlayerService
	summaries     *services.SummaryService
	teams         services.TeamService
	prefs         *middleware.PreferencesMiddleware
	options       []models.SortOption
	demo          bool
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(templates *template.Template, playerService services.PlayerService, summaries *services.SummaryService,
	teams services.TeamService, prefs *middleware.PreferencesMiddleware, demo bool) *PlayerHandler {
	return &PlayerHandler{
		renderer:      renderer{templates: templates, logger: logging.WithPrefix("PlayerHandler")},
		playerService: playerService,
		summaries:     summaries,
		teams:         teams,
		prefs:         prefs,
		options:       services.DefaultSortOptions(),
		demo:          demo,
	}
}

// PlayersPage is the data for players.html
type PlayersPage struct {
	Page
	Search      string
	Sort        models.SortConfig
	SortOptions []models.SortOption
	Columns     []SortColumn
	Rows        []PlayerRow
}

// fetchPlayers loads players, logging and swallowing failures so pages
// render an empty list
func (h *PlayerHandler) fetchPlayers(ctx context.Context, query models.PlayerQuery) []models.Player {
	players, err := h.playerService.GetPlayers(ctx, query)
	if err != nil {
		h.logger.Errorf("Failed to load players (%s): %v", query.CacheKey(), err)
		return nil
	}
	return players
}

func (h *PlayerHandler) summaryHTML(ctx context.Context) func(string) template.HTML {
	return func(name string) template.HTML {
		return services.RenderSummaryHTML(h.summaries.GetSummary(ctx, name))
	}
}

// GetPlayers handles GET /players?search=&sort=&dir=&expanded=
func (h *PlayerHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))

	sortCfg, fromQuery := sortFromQuery(q, h.options)
	if fromQuery {
		if err := h.prefs.SavePreferences(w, sortCfg); err != nil {
			h.logger.Warnf("Failed to save sort preference: %v", err)
		}
	} else {
		sortCfg = middleware.GetSortConfigFromContext(r)
	}

	players := h.fetchPlayers(r.Context(), models.PlayerQuery{Name: search})
	players = services.SortPlayers(services.FilterByName(players, search), sortCfg)

	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	state := listState{path: "/players", params: params, sort: sortCfg, expanded: q.Get("expanded")}

	h.logger.Debugf("Rendering %d players (search=%q sort=%s %s)", len(players), search, sortCfg.Field, sortCfg.Direction)
	h.render(w, http.StatusOK, "players.html", PlayersPage{
		Page:        newPage("Players", "players", h.demo),
		Search:      search,
		Sort:        sortCfg,
		SortOptions: h.options,
		Columns:     state.columns(h.options),
		Rows:        state.rows(players, h.teams, h.summaryHTML(r.Context())),
	})
}

// SearchPage is the data for search.html
type SearchPage struct {
	Page
	Name     string
	Team     string
	Teams    []models.Team
	Searched bool
	Columns  []SortColumn
	Rows     []PlayerRow
}

// Search handles GET /search?name=&team=
func (h *PlayerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.PlayerQuery{
		Name: strings.TrimSpace(q.Get("name")),
		Team: strings.TrimSpace(q.Get("team")),
	}

	data := SearchPage{
		Page:     newPage("Search", "search", h.demo),
		Name:     query.Name,
		Team:     query.Team,
		Teams:    h.teams.GetAllTeams(),
		Searched: !query.IsEmpty(),
	}

	if data.Searched {
		sortCfg, ok := sortFromQuery(q, h.options)
		if !ok {
			sortCfg = models.DefaultSortConfig()
		}

		params := url.Values{}
		if query.Name != "" {
			params.Set("name", query.Name)
		}
		if query.Team != "" {
			params.Set("team", query.Team)
		}
		state := listState{path: "/search", params: params, sort: sortCfg, expanded: q.Get("expanded")}

		players := services.SortPlayers(h.fetchPlayers(r.Context(), query), sortCfg)
		data.Columns = state.columns(h.options)
		data.Rows = state.rows(players, h.teams, h.summaryHTML(r.Context()))
	}

	h.render(w, http.StatusOK, "search.html", data)
}

// SummaryFragment is the data for the summary.html fragment
type SummaryFragment struct {
	PlayerName string
	Summary    template.HTML
}

// GetSummary handles GET /players/{name}/summary and returns an HTML fragment
func (h *PlayerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	name := pathVar(r, "name")
	h.render(w, http.StatusOK, "summary.html", SummaryFragment{
		PlayerName: name,
		Summary:    services.RenderSummaryHTML(h.summaries.GetSummary(r.Context(), name)),
	})
}

// GetPlayersJSON handles GET /api/players?search=&team=&q=&sort=&dir=
func (h *PlayerHandler) GetPlayersJSON(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	query := models.PlayerQuery{Name: search, Team: strings.TrimSpace(q.Get("team"))}

	sortCfg, ok := sortFromQuery(q, h.options)
	if !ok {
		sortCfg = models.DefaultSortConfig()
	}

	players, err := h.playerService.GetPlayers(r.Context(), query)
	if err != nil {
		h.logger.Errorf("Failed to load players for API: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load players"})
		return
	}

	players = services.FilterByName(players, search)
	if term := strings.TrimSpace(q.Get("q")); term != "" {
		players = services.FilterByNameOrTeam(players, term)
	}
	writeJSON(w, http.StatusOK, services.SortPlayers(players, sortCfg))
}
