package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/LucianoSainz/w5d1/internal/models"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// ParseTemplates parses the embedded HTML pages
func ParseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// PageData is the data every page template is rendered with
type PageData struct {
	Section  string
	User     *models.User
	Messages []string
}

type BaseHandler struct {
	logger    *zap.Logger
	templates *template.Template
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// render executes the named page template into an HTML response
// The page is rendered into a buffer first so a template error still yields a clean 500
func (h *BaseHandler) render(w http.ResponseWriter, status int, name string, data PageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
