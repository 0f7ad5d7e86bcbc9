package middleware

import (
	"context"
	"net/http"
	"rally-metrics-go/models"
	"rally-metrics-go/services"
)

type sortConfigKey struct{}

// PreferencesMiddleware loads the saved sort preference from the prefs cookie
type PreferencesMiddleware struct {
	prefs  *services.PreferencesService
	secure bool
}

// NewPreferencesMiddleware creates a new preferences middleware. secure marks
// the cookie Secure.
func NewPreferencesMiddleware(prefs *services.PreferencesService, secure bool) *PreferencesMiddleware {
	return &PreferencesMiddleware{prefs: prefs, secure: secure}
}

// LoadPreferences puts the saved (or default) sort config in the request context
func (m *PreferencesMiddleware) LoadPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := models.DefaultSortConfig()
		if cookie, err := r.Cookie(services.PreferencesCookieName); err == nil {
			cfg = m.prefs.SortConfigOrDefault(cookie.Value)
		}
		next.ServeHTTP(w, r.WithContext(WithSortConfig(r.Context(), cfg)))
	})
}

// SavePreferences writes cfg to the prefs cookie
func (m *PreferencesMiddleware) SavePreferences(w http.ResponseWriter, cfg models.SortConfig) error {
	token, err := m.prefs.GenerateToken(cfg)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     services.PreferencesCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.prefs.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// WithSortConfig returns ctx carrying cfg
func WithSortConfig(ctx context.Context, cfg models.SortConfig) context.Context {
	return context.WithValue(ctx, sortConfigKey{}, cfg)
}

// GetSortConfigFromContext returns the saved sort preference, or the default
func GetSortConfigFromContext(r *http.Request) models.SortConfig {
	if cfg, ok := r.Context().Value(sortConfigKey{}).(models.SortConfig); ok {
		return cfg
	}
	return models.DefaultSortConfig()
}
