// Package server is the HTTP side of the gateway: an article index, article
// pages and attachment downloads, each backed by its own news session.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emurenMRz/newsview/internal/logger"
	"github.com/emurenMRz/newsview/internal/news"
)

// Options configures a Server.
type Options struct {
	Dialer news.Dialer
	Group  string
	Logger *zap.Logger

	// Location converts article dates for display. Nil shows them as sent.
	Location *time.Location
	// ReplyURL, when set, is linked from article pages with the article's
	// Message-ID and a "Re:" subject as query parameters.
	ReplyURL string
}

// Server serves one newsgroup.
type Server struct {
	dialer   news.Dialer
	group    string
	log      *zap.Logger
	loc      *time.Location
	replyURL string
}

// New returns a Server for opts.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		dialer:   opts.Dialer,
		group:    opts.Group,
		log:      log,
		loc:      opts.Location,
		replyURL: opts.ReplyURL,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// session opens a per-request session. Callers close it when done.
func (s *Server) session(r *http.Request) *news.Session {
	return news.NewSession(s.dialer, s.group, logger.WithRequest(r.Context(), s.log))
}

func (s *Server) closeSession(sess *news.Session) {
	if err := sess.Close(); err != nil {
		s.log.Debug("closing session", zap.Error(err))
	}
}
