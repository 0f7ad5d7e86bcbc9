package handlers

import (
	"io/fs"
	"net/http"
	"net/url"
	"rally-metrics-go/middleware"

	"github.com/gorilla/mux"
)

// Router groups the handlers and middleware the HTTP server needs
type Router struct {
	Pages       *PageHandler
	Players     *PlayerHandler
	Predictor   *PredictorHandler
	Events      *EventHub
	Health      *HealthHandler
	Admin       *AdminHandler
	AdminAuth   *middleware.AdminAuth
	Preferences *middleware.PreferencesMiddleware
	Static      fs.FS
	BehindProxy bool
	CORSOrigins []string
}

// Build registers every route on a new mux router
func (rt Router) Build() *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityMiddleware(rt.BehindProxy))
	r.Use(rt.Preferences.LoadPreferences)

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(rt.Static))))

	// Pages
	r.HandleFunc("/", rt.Pages.Home).Methods("GET")
	r.HandleFunc("/about", rt.Pages.About).Methods("GET")
	r.HandleFunc("/teams", rt.Pages.Teams).Methods("GET")
	r.HandleFunc("/teams/{slug}", rt.Pages.Team).Methods("GET")
	r.HandleFunc("/players", rt.Players.GetPlayers).Methods("GET")
	r.HandleFunc("/players/{name}/summary", rt.Players.GetSummary).Methods("GET")
	r.HandleFunc("/search", rt.Players.Search).Methods("GET")
	r.HandleFunc("/predictor", rt.Predictor.Predictor).Methods("GET", "POST")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.CORS(rt.CORSOrigins))
	api.HandleFunc("/players", rt.Players.GetPlayersJSON).Methods("GET", "OPTIONS")
	api.HandleFunc("/predict", rt.Predictor.PredictJSON).Methods("POST", "OPTIONS")

	// Infrastructure
	r.Handle("/events", rt.Events).Methods("GET")
	r.HandleFunc("/healthz", rt.Health.Health).Methods("GET")
	r.Handle("/admin/cache/purge", rt.AdminAuth.RequireAdmin(http.HandlerFunc(rt.Admin.PurgeCaches))).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(rt.Pages.NotFound)
	return r
}

// pathVar returns a decoded route variable. Routes match the encoded path so
// that names containing "/" stay in one segment.
func pathVar(r *http.Request, key string) string {
	v := mux.Vars(r)[key]
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
