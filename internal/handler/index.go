package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexHandler serves the HTML landing page with forms for every endpoint.
// The template is parsed once at startup and reused for each request.
type IndexHandler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewIndexHandler parses the embedded page templates.
func NewIndexHandler(logger *slog.Logger) (*IndexHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &IndexHandler{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// HandleIndex renders the landing page.
//
// HTTP: GET /
func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Exercise Tracker",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.templates.ExecuteTemplate(w, "index", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
