package handlers

import (
	"net/http"
	"os"
	"path"

	"Portfolio/logger"
)

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index", PageData{})
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about", PageData{})
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "services", PageData{})
}

func (h *Handler) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "contact", PageData{})
}

// Portfolio lists every project, newest first. A query failure is a 500
// for this request only.
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		logger.Errorf("Portfolio: select projects error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "portfolio", PageData{Projects: projects})
}

// NotFound serves a file from the public dir when one matches the path,
// otherwise the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && h.serveStatic(w, r) {
		return
	}
	h.render(w, http.StatusNotFound, "404", PageData{})
}

func (h *Handler) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if h.publicDir == "" {
		return false
	}
	name := path.Clean("/" + r.URL.Path)
	f, err := http.Dir(h.publicDir).Open(name)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debugf("static %s: %v", name, err)
		}
		return false
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		return false
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
	return true
}

// Healthz reports whether the pool can still reach the database.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logger.Warnf("Healthz: ping failed: %v", err)
		respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
