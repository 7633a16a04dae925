package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/emurenMRz/newsview/internal/logger"
	"github.com/emurenMRz/newsview/internal/news"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var (
	errNotFound           = errors.New("not found")
	errAttachmentNotFound = errors.New("attachment not found")
)

// render executes a page template into a buffer first so a template failure
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// fail maps err onto a status: 502 for backend failures, 404 for missing
// things and 500 for everything else.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.WithRequest(r.Context(), s.log)

	var upstream *news.UpstreamError
	switch {
	case errors.As(err, &upstream):
		log.Warn("upstream error", zap.String("op", upstream.Op), zap.Error(err))
		http.Error(w, "NNTP Error: "+upstream.Error(), http.StatusBadGateway)
	case errors.Is(err, errAttachmentNotFound):
		http.Error(w, "Attachment not found", http.StatusNotFound)
	case errors.Is(err, errNotFound):
		http.NotFound(w, r)
	default:
		log.Error("request failed", zap.Error(err))
		http.Error(w, "Server Error", http.StatusInternalServerError)
	}
}
