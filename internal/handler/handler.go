package handler

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// DB is the subset of the connection pool used by the health endpoints.
type DB interface {
	Ping(ctx context.Context) error
}

// Upstream is an external dependency checked by /api/status. Nil means not configured.
type Upstream interface {
	Ping(ctx context.Context) error
}

// ServiceInfo is static metadata reported by the root route.
type ServiceInfo struct {
	Version        string
	Environment    string
	AllowedOrigins []string
	ProjectSource  string
}

// Handler serves the service metadata and health routes.
type Handler struct {
	db       DB
	upstream Upstream
	info     ServiceInfo
	started  time.Time
	now      func() time.Time
}

func New(db DB, upstream Upstream, info ServiceInfo) *Handler {
	return &Handler{db: db, upstream: upstream, info: info, started: time.Now(), now: time.Now}
}

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// CORS allows cross-origin requests from the configured origins. An entry of
// the form "*.example.com" matches any origin whose host ends in
// ".example.com". Requests without an Origin header pass through untouched; a
// disallowed origin gets no CORS headers and the browser blocks the response.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && originAllowed(origin, allowedOrigins)
			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	origin = strings.TrimSuffix(origin, "/")
	for _, a := range allowed {
		if suffix, ok := strings.CutPrefix(a, "*"); ok && strings.HasPrefix(suffix, ".") {
			host := origin
			if i := strings.Index(host, "://"); i >= 0 {
				host = host[i+3:]
			}
			if j := strings.LastIndex(host, ":"); j >= 0 {
				host = host[:j]
			}
			if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
				return true
			}
			continue
		}
		if origin == a {
			return true
		}
	}
	return false
}
