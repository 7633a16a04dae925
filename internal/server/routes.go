package server

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/emurenMRz/newsview/internal/logger"
	"github.com/emurenMRz/newsview/internal/metrics"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	// GET only; everything else is reported as missing.
	r.NotFound(http.NotFound)
	r.MethodNotAllowed(http.NotFound)

	r.Get("/", s.handleIndex)
	r.Get("/article/{articleID}", s.handleArticle)
	r.Get("/attachment/{articleID}/{index}", s.handleAttachment)
	return r
}

// accessLog writes one line per request and records its latency.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(route, strconv.Itoa(status), elapsed)

		logger.WithRequest(r.Context(), s.log).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// recoverer turns a handler panic into a plain 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.WithRequest(r.Context(), s.log).Error("panic",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			http.Error(w, "Server Error", http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
