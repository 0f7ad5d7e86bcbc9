package middleware

import (
	"net/http"
	"strings"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://cdn.jsdelivr.net; " +
	"font-src 'self' https://fonts.gstatic.com https://cdn.jsdelivr.net; " +
	"img-src 'self' data:; " +
	"connect-src 'self'"

// SecurityMiddleware adds security headers to all responses. Behind a proxy,
// HSTS is only sent when the proxy reports the original request was HTTPS.
func SecurityMiddleware(behindProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			if isHTTPS(r, behindProxy) {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", contentSecurityPolicy)

			next.ServeHTTP(w, r)
		})
	}
}

func isHTTPS(r *http.Request, behindProxy bool) bool {
	if !behindProxy {
		return r.TLS != nil
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") || r.Header.Get("CF-Visitor") != ""
}
