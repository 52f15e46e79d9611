package handler

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
// The API only serves JSON, so the CSP denies everything.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// Recover turns a panic in a handler into a 500 JSON response. With
// exposeErrors the panic value is included in the body.
func Recover(exposeErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic serving request",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
				)
				resp := envelope{Success: false, Message: "Internal server error"}
				if exposeErrors {
					resp.Error = fmt.Sprint(rec)
				}
				writeJSON(w, http.StatusInternalServerError, resp)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the submitter address: first X-Forwarded-For entry, then
// X-Real-IP, then the connection's remote host. Unknown when none is usable.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		if host != "" {
			return host
		}
	}
	return model.UnknownClient
}

func userAgent(r *http.Request) string {
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		return ua
	}
	return model.UnknownClient
}
