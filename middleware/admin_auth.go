package middleware

import (
	"crypto/subtle"
	"net/http"
	"rally-metrics-go/logging"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuth guards maintenance endpoints with HTTP basic auth checked
// against a bcrypt hash
type AdminAuth struct {
	user         string
	passwordHash []byte
	logger       *logging.Logger
}

// NewAdminAuth creates the guard. An empty hash disables every admin route.
func NewAdminAuth(user, passwordHash string) *AdminAuth {
	return &AdminAuth{
		user:         user,
		passwordHash: []byte(passwordHash),
		logger:       logging.WithPrefix("AdminAuth"),
	}
}

// RequireAdmin rejects requests without valid admin credentials
func (a *AdminAuth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.passwordHash) == 0 {
			http.NotFound(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !a.check(user, pass) {
			a.logger.Warnf("Rejected admin request %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Basic realm="rally-metrics admin", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) check(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(pass)) == nil
	return userOK && passOK
}
