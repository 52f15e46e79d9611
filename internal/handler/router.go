package handler

import "net/http"

// Routes groups the handlers mounted by NewRouter. Metrics may be nil.
type Routes struct {
	Health   *Handler
	Contact  *ContactHandler
	Projects *ProjectHandler
	Metrics  http.Handler
}

// NewRouter registers every route on a new ServeMux. Unmatched paths get
// the JSON 404.
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rt.Health.Root)
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("GET /api/status", rt.Health.Status)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	mux.HandleFunc("POST /api/contact", rt.Contact.Submit)
	mux.HandleFunc("GET /api/contact", rt.Contact.List)
	mux.HandleFunc("GET /api/contact/stats", rt.Contact.Stats)
	mux.HandleFunc("GET /api/contact/{id}", rt.Contact.Get)
	mux.HandleFunc("PATCH /api/contact/{id}/status", rt.Contact.UpdateStatus)
	mux.HandleFunc("DELETE /api/contact/{id}", rt.Contact.Delete)

	mux.HandleFunc("GET /api/projects", rt.Projects.List)

	mux.HandleFunc("/", NotFound)
	return mux
}

// Chain wraps h so that the first middleware is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
