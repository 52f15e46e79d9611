package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

const dependencyCheckTimeout = 3 * time.Second

var rootFeatures = []string{
	"Project Management",
	"Advanced Contact Forms",
	"Contact Statistics",
	"Prometheus Metrics",
	"CORS Configured for Vercel",
}

var availableEndpoints = []string{
	"GET /",
	"GET /health",
	"GET /api/status",
	"GET /api/projects",
	"POST /api/contact",
}

type rootResponse struct {
	ActiveStatus   bool      `json:"active_status"`
	Message        string    `json:"message"`
	Version        string    `json:"version"`
	Features       []string  `json:"features"`
	ProjectSource  string    `json:"project_source"`
	Timestamp      time.Time `json:"timestamp"`
	Environment    string    `json:"environment"`
	AllowedOrigins []string  `json:"allowed_origins"`
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	origins := h.info.AllowedOrigins
	if origins == nil {
		origins = []string{}
	}
	writeJSON(w, http.StatusOK, rootResponse{
		ActiveStatus:   true,
		Message:        "Portfolio Backend Active",
		Version:        h.info.Version,
		Features:       rootFeatures,
		ProjectSource:  h.info.ProjectSource,
		Timestamp:      h.now().UTC(),
		Environment:    h.info.Environment,
		AllowedOrigins: origins,
	})
}

type memoryStats struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	HeapInuseBytes  uint64 `json:"heap_inuse_bytes"`
	NumGC           uint32 `json:"num_gc"`
	Goroutines      int    `json:"goroutines"`
}

type healthResponse struct {
	Status        string      `json:"status"`
	Database      string      `json:"database"`
	UptimeSeconds float64     `json:"uptime_seconds"`
	Memory        memoryStats `json:"memory"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Health handles GET /health. The server answers 200 while the database is
// down because contact submissions still succeed in degraded mode.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "Server is running",
		Database:      h.databaseState(r.Context()),
		UptimeSeconds: h.now().Sub(h.started).Seconds(),
		Memory: memoryStats{
			AllocBytes:      ms.Alloc,
			TotalAllocBytes: ms.TotalAlloc,
			SysBytes:        ms.Sys,
			HeapInuseBytes:  ms.HeapInuse,
			NumGC:           ms.NumGC,
			Goroutines:      runtime.NumGoroutine(),
		},
		Timestamp: h.now().UTC(),
	})
}

func (h *Handler) databaseState(ctx context.Context) string {
	if h.db == nil {
		return "disconnected"
	}
	ctx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

type statusResponse struct {
	Server      string            `json:"server"`
	Database    string            `json:"database"`
	GitHub      string            `json:"github"`
	LastChecked time.Time         `json:"last_checked"`
	Endpoints   map[string]string `json:"endpoints"`
}

// Status handles GET /api/status. Database and upstream are probed concurrently.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Server:   "Operational",
		GitHub:   "not configured",
		Endpoints: map[string]string{
			"projects": "/api/projects",
			"contact":  "/api/contact",
			"health":   "/health",
			"metrics":  "/metrics",
		},
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		if h.databaseState(ctx) == "connected" {
			resp.Database = "Connected"
		} else {
			resp.Database = "Disconnected"
		}
		return nil
	})
	if h.upstream != nil {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
			defer cancel()
			if err := h.upstream.Ping(ctx); err != nil {
				resp.GitHub = "Unreachable"
				return nil
			}
			resp.GitHub = "Reachable"
			return nil
		})
	}
	_ = g.Wait()

	resp.LastChecked = h.now().UTC()
	writeJSON(w, http.StatusOK, resp)
}

type notFoundResponse struct {
	Success            bool     `json:"success"`
	Message            string   `json:"message"`
	Path               string   `json:"path"`
	AvailableEndpoints []string `json:"available_endpoints"`
}

// NotFound is the catch-all route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundResponse{
		Success:            false,
		Message:            "Route not found",
		Path:               r.URL.RequestURI(),
		AvailableEndpoints: availableEndpoints,
	})
}
