package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"path/filepath"
	"time"
	"unicode/utf8"

	"Portfolio/logger"
	"Portfolio/models"

	"github.com/russross/blackfriday/v2"
)

// pages lists every template name; each lives in templates/<name>.html and
// defines a template of the same name.
var pages = []string{"index", "about", "services", "portfolio", "contact", "404"}

type views map[string]*template.Template

// PageData is the context every page template receives.
type PageData struct {
	Active   string
	Year     int
	Projects []models.Project
}

var funcs = template.FuncMap{
	"markdown": func(s string) template.HTML {
		return template.HTML(blackfriday.Run([]byte(s)))
	},
	"truncate": func(s string, n int) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		rs := []rune(s)
		return string(rs[:n]) + "..."
	},
}

func loadViews(dir string) (views, error) {
	v := make(views, len(pages))
	for _, name := range pages {
		tmpl, err := template.New("").Funcs(funcs).ParseFiles(
			filepath.Join(dir, "header.html"),
			filepath.Join(dir, name+".html"),
			filepath.Join(dir, "footer.html"),
		)
		if err != nil {
			return nil, err
		}
		v[name] = tmpl
	}
	return v, nil
}

// render executes a page into a buffer first, so a template error still
// produces a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data PageData) {
	tmpl, ok := h.views[name]
	if !ok {
		logger.Errorf("render: unknown page %q", name)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	data.Active = name
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Errorf("render %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
