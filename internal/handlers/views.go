package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"finance/internal/middleware"
	"finance/internal/money"

	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"add_funds.html",
	"apology.html",
	"buy.html",
	"change_password.html",
	"history.html",
	"index.html",
	"login.html",
	"quote.html",
	"quoted.html",
	"register.html",
	"sell.html",
}

var templateFuncs = template.FuncMap{
	"usd": money.USD,
	"timestamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04:05")
	},
}

type views map[string]*template.Template

func loadViews() (views, error) {
	parsed := make(views, len(pages))
	for _, name := range pages {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		parsed[name] = tmpl
	}
	return parsed, nil
}

type pageData struct {
	LoggedIn bool
	Flashes  []string
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := h.views[name]
	if !ok {
		log.WithField("template", name).Error("unknown template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	page := pageData{Data: data}
	if sessionID, ok := middleware.SessionIDFromContext(r.Context()); ok {
		page.LoggedIn = true
		page.Flashes = h.sessions.PopFlashes(sessionID)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		log.WithError(err).WithField("template", name).Error("render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type apologyView struct {
	Status  int
	Message string
}

func (h *Handler) apology(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "apology.html", apologyView{Status: status, Message: message})
}
