package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

// Router wires every route. Unmatched paths, including a known path with
// the wrong method, fall through to static files and then the 404 page.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	// Public pages
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/about", h.About).Methods("GET")
	r.HandleFunc("/services", h.Services).Methods("GET")
	r.HandleFunc("/portfolio", h.Portfolio).Methods("GET")
	r.HandleFunc("/contact", h.ContactForm).Methods("GET")

	// API
	r.HandleFunc("/api/contact", h.SubmitContact).Methods("POST")
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)

	return gzhttp.GzipHandler(LogRequests(Recover(r)))
}
