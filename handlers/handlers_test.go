package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"rally-metrics-go/middleware"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
	"rally-metrics-go/templates"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testPlayers() []models.Player {
	return []models.Player{
		{Name: "Zoe Park", Rank: 2, Team: "Chicago Slice", GamesWon: 25, GamesLost: 15, GamesWonPercent: 62.5, PtsWon: 500, PtsLost: 460, PtsWonPercent: 52.1},
		{Name: "Adam Reyes", Rank: 3, Team: "Texas Ranchers", GamesWon: 20, GamesLost: 20, GamesWonPercent: 50, PtsWon: 480, PtsLost: 474, PtsWonPercent: 50.3},
		{Name: "Mia Cole", Rank: 1, Team: "Chicago Slice", GamesWon: 30, GamesLost: 10, GamesWonPercent: 75, PtsWon: 550, PtsLost: 450, PtsWonPercent: 55},
		{Name: "Ben Ortiz", Rank: 4, Team: "Orlando Squeeze", GamesWon: 10, GamesLost: 30, GamesWonPercent: 25, PtsWon: 400, PtsLost: 489, PtsWonPercent: 45},
	}
}

// failingPlayerService simulates an unreachable stats API
type failingPlayerService struct{}

var errDown = errors.New("connection refused")

func (failingPlayerService) GetPlayers(context.Context, models.PlayerQuery) ([]models.Player, error) {
	return nil, errDown
}
func (failingPlayerService) GetSummary(context.Context, string) (string, error) { return "", errDown }
func (failingPlayerService) Predict(context.Context, string, string) (string, error) {
	return "", errDown
}
func (failingPlayerService) Refresh(context.Context) (bool, error) { return false, errDown }
func (failingPlayerService) HealthCheck(context.Context) bool      { return false }

const adminPassword = "hunter2"

func newTestRouter(t *testing.T, playerService services.PlayerService) *mux.Router {
	t.Helper()
	tmpl, err := templates.Parse()
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	teams := services.NewStaticTeamService()
	summaries := services.NewSummaryService(playerService, services.NewMemorySummaryRepository(), time.Hour)
	prefs := middleware.NewPreferencesMiddleware(services.NewPreferencesService("test-secret"), false)

	return Router{
		Pages:       NewPageHandler(tmpl, playerService, teams, rand.New(rand.NewSource(1)), true),
		Players:     NewPlayerHandler(tmpl, playerService, summaries, teams, prefs, true),
		Predictor:   NewPredictorHandler(tmpl, playerService, teams, true),
		Events:      NewEventHub(time.Hour),
		Health:      NewHealthHandler(playerService, true),
		Admin:       NewAdminHandler(services.NewMemoryPlayerListCache(time.Minute), summaries),
		AdminAuth:   middleware.NewAdminAuth("admin", string(hash)),
		Preferences: prefs,
		Static:      templates.Static(),
	}.Build()
}

func demoRouter(t *testing.T) *mux.Router {
	return newTestRouter(t, services.NewDemoPlayerServiceWithPlayers(testPlayers()))
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// requireOrder checks that each name appears after the previous one
func requireOrder(t *testing.T, body string, names ...string) {
	t.Helper()
	last := -1
	for _, name := range names {
		idx := strings.Index(body, name)
		require.Greater(t, idx, last, "%s out of order", name)
		last = idx
	}
}

func TestHomeAndAbout(t *testing.T) {
	r := demoRouter(t)

	rec := get(t, r, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Accurate Stats")
	require.Contains(t, body, `href="/predictor"`)
	require.Contains(t, body, "Demo mode")
	require.Equal(t, 3, strings.Count(body, `class="card `))
	require.Equal(t, 2, strings.Count(body, `src="/static/teams/`))

	rec = get(t, r, "/about")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "About Rally Metrics")
}

func TestPlayersDefaultSortByRank(t *testing.T) {
	rec := get(t, demoRouter(t), "/players")
	require.Equal(t, http.StatusOK, rec.Code)
	requireOrder(t, rec.Body.String(), "Mia Cole", "Zoe Park", "Adam Reyes", "Ben Ortiz")
	require.Empty(t, rec.Result().Cookies())
}

func TestPlayersSortPersistsPreference(t *testing.T) {
	r := demoRouter(t)

	rec := get(t, r, "/players?sort=ptsLost&dir=asc")
	require.Equal(t, http.StatusOK, rec.Code)
	requireOrder(t, rec.Body.String(), "Mia Cole", "Zoe Park", "Adam Reyes", "Ben Ortiz")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, services.PreferencesCookieName, cookies[0].Name)

	rec = get(t, r, "/players?sort=gamesLost", cookies...)
	requireOrder(t, rec.Body.String(), "Ben Ortiz", "Adam Reyes", "Zoe Park", "Mia Cole")
	cookies = rec.Result().Cookies()

	// no sort parameter: the saved preference (gamesLost desc) applies
	rec = get(t, r, "/players", cookies...)
	requireOrder(t, rec.Body.String(), "Ben Ortiz", "Adam Reyes", "Zoe Park", "Mia Cole")
	require.Contains(t, rec.Body.String(), "L ↓")
}

func TestPlayersSearchAndHeaderLinks(t *testing.T) {
	rec := get(t, demoRouter(t), "/players?search=CHICAGO")
	require.Contains(t, rec.Body.String(), "No players found")

	rec = get(t, demoRouter(t), "/players?search=co&sort=rank&dir=asc")
	body := rec.Body.String()
	require.Contains(t, body, "Mia Cole")
	require.NotContains(t, body, "Zoe Park")
	// clicking the active column flips its direction and keeps the search
	require.Contains(t, body, `href="/players?dir=desc&amp;search=co&amp;sort=rank"`)
}

func TestPlayersExpandedSummary(t *testing.T) {
	target := "/players?" + url.Values{"expanded": {"Mia Cole"}}.Encode()
	rec := get(t, demoRouter(t), target)
	body := rec.Body.String()
	require.Equal(t, 1, strings.Count(body, `class="summary-row`))
	require.Contains(t, body, "Ranked #1 this season.")
	require.Contains(t, body, `aria-expanded="true"`)
}

func TestPlayersAPIFailureRendersEmpty(t *testing.T) {
	rec := get(t, newTestRouter(t, failingPlayerService{}), "/players?expanded=Mia+Cole")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No players found")
}

func TestSummaryFragment(t *testing.T) {
	rec := get(t, demoRouter(t), "/players/"+url.PathEscape("Zoe Park")+"/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Zoe Park of the Chicago Slice")

	rec = get(t, demoRouter(t), "/players/Nobody/summary")
	require.Contains(t, rec.Body.String(), "Player not found")

	rec = get(t, newTestRouter(t, failingPlayerService{}), "/players/Zoe%20Park/summary")
	require.Contains(t, rec.Body.String(), services.SummaryFailedText)
}

func TestSummaryFragmentNameWithSlash(t *testing.T) {
	players := append(testPlayers(), models.Player{Name: "Ana/Bo Reyes", Rank: 5, Team: "Texas Ranchers", GamesWon: 5, GamesLost: 5, GamesWonPercent: 50})
	r := newTestRouter(t, services.NewDemoPlayerServiceWithPlayers(players))

	rec := get(t, r, "/teams/texas-ranchers")
	require.Contains(t, rec.Body.String(), `hx-get="/players/Ana%2FBo%20Reyes/summary"`)

	rec = get(t, r, "/players/"+url.PathEscape("Ana/Bo Reyes")+"/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ana/Bo Reyes of the Texas Ranchers")
}

func TestTeams(t *testing.T) {
	r := demoRouter(t)

	rec := get(t, r, "/teams")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 16, strings.Count(rec.Body.String(), `class="team-card`))

	rec = get(t, r, "/teams/chicago-slice")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	requireOrder(t, body, "Mia Cole", "Zoe Park")
	require.NotContains(t, body, "Adam Reyes")
	require.Contains(t, body, "bg-red-600/20")
	require.Contains(t, body, `src="/static/teams/chicago_slice.png"`)

	rec = get(t, r, "/teams/texas-ranchers")
	require.Contains(t, rec.Body.String(), "Adam Reyes")

	rec = get(t, r, "/teams/atlanta-bouncers")
	require.Contains(t, rec.Body.String(), "No players found for this team.")

	rec = get(t, r, "/teams/springfield-isotopes")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "404")

	rec = get(t, r, "/no/such/page")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPredictor(t *testing.T) {
	r := demoRouter(t)

	rec := get(t, r, "/predictor")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	requireOrder(t, body, `<option value="Adam Reyes"`, `<option value="Ben Ortiz"`, `<option value="Mia Cole"`, `<option value="Zoe Park"`)
	require.NotContains(t, body, `role="alert"`)

	rec = postForm(t, r, "/predictor", url.Values{"playerA": {"Mia Cole"}, "playerB": {"Mia Cole"}})
	require.Contains(t, rec.Body.String(), "Select two different players.")

	rec = postForm(t, r, "/predictor", url.Values{"playerA": {"Mia Cole"}})
	require.Contains(t, rec.Body.String(), "Select two players.")

	rec = postForm(t, r, "/predictor", url.Values{"playerA": {"Ben Ortiz"}, "playerB": {"Mia Cole"}})
	body = rec.Body.String()
	require.Contains(t, body, "Mia Cole is favored over Ben Ortiz")
	require.Contains(t, body, "75.0%")

	rec = postForm(t, newTestRouter(t, failingPlayerService{}), "/predictor", url.Values{"playerA": {"A"}, "playerB": {"B"}})
	require.Contains(t, rec.Body.String(), PredictionErrorText)
}

func TestPredictJSON(t *testing.T) {
	r := demoRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"playerA":"Zoe Park","playerB":"Adam Reyes"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), "Zoe Park is favored over Adam Reyes"))

	req = httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"playerA":"Zoe Park"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	r := demoRouter(t)

	rec := get(t, r, "/search")
	require.Contains(t, rec.Body.String(), "Enter a player name or pick a team.")

	rec = get(t, r, "/search?team=chicago+slice")
	body := rec.Body.String()
	requireOrder(t, body, "Mia Cole", "Zoe Park")
	require.NotContains(t, body, "Ben Ortiz")

	rec = get(t, r, "/search?name=zz")
	require.Contains(t, rec.Body.String(), "No players found.")
}

func TestPlayersJSON(t *testing.T) {
	rec := get(t, demoRouter(t), "/api/players?sort=ptsWonPercent&dir=desc")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var players []models.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 4)
	require.Equal(t, "Mia Cole", players[0].Name)
	require.Equal(t, "Ben Ortiz", players[3].Name)

	rec = get(t, demoRouter(t), "/api/players?q=slice")
	require.Equal(t, http.StatusOK, rec.Code)
	players = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 2)
	require.Equal(t, "Mia Cole", players[0].Name)

	rec = get(t, newTestRouter(t, failingPlayerService{}), "/api/players")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := get(t, demoRouter(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, HealthResponse{Status: "ok", API: true, Demo: true}, resp)

	rec = get(t, newTestRouter(t, failingPlayerService{}), "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminPurge(t *testing.T) {
	r := demoRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/cache/purge", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req.SetBasicAuth("admin", adminPassword)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"players":true,"summaries":true}`, rec.Body.String())
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	rec := get(t, demoRouter(t), "/about")
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestStaticAssets(t *testing.T) {
	rec := get(t, demoRouter(t), "/static/css/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), ".stats-table")
}

func TestEventHubStreams(t *testing.T) {
	hub := NewEventHub(time.Hour)
	server := httptest.NewServer(hub)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		var event string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			if line == "" {
				return event
			}
			if strings.HasPrefix(line, "event: ") {
				event = strings.TrimPrefix(line, "event: ")
			}
		}
	}

	require.Equal(t, EventConnected, readEvent())
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastStatsUpdated()
	require.Equal(t, EventStatsUpdated, readEvent())
}

func TestEventHubKeepalive(t *testing.T) {
	hub := NewEventHub(10 * time.Millisecond)
	server := httptest.NewServer(hub)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.TrimSpace(line) == "event: "+EventKeepalive {
			return
		}
	}
	t.Fatal("no keepalive received")
}
