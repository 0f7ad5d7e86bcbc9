package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"rally-metrics-go/logging"
	"time"
)

// Page is the data every full page template receives
type Page struct {
	Title  string
	Active string // nav item to highlight
	Demo   bool
	Year   int
}

func newPage(title, active string, demo bool) Page {
	return Page{Title: title, Active: active, Demo: demo, Year: time.Now().Year()}
}

// renderer executes templates into a buffer so a failing template never
// leaves a half-written page
type renderer struct {
	templates *template.Template
	logger    *logging.Logger
}

func (rd renderer) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		rd.logger.Errorf("Template %s failed: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (rd renderer) notFound(w http.ResponseWriter, demo bool) {
	rd.render(w, http.StatusNotFound, "404.html", newPage("Not Found", "", demo))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
