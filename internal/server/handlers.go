package server

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emurenMRz/newsview/internal/article"
	"github.com/emurenMRz/newsview/internal/logger"
	"github.com/emurenMRz/newsview/internal/metrics"
	"github.com/emurenMRz/newsview/internal/news"
	"github.com/emurenMRz/newsview/internal/paging"
	"github.com/emurenMRz/newsview/internal/textdecode"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.session(r)
	defer s.closeSession(sess)

	g, err := sess.Bounds(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	window := paging.Plan(paging.ParsePage(r.URL.Query().Get("page")), g.Bounds())

	page := indexPage{
		Group:      s.group,
		Page:       window.Page,
		TotalPages: window.TotalPages,
		HasPrev:    window.HasPrev(),
		HasNext:    window.HasNext(),
	}
	if !window.Empty {
		entries, err := sess.FetchOverview(ctx, s.group, window.Low, window.High)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		// newest first
		for i := len(entries) - 1; i >= 0; i-- {
			page.Rows = append(page.Rows, s.indexRow(entries[i]))
		}
	}
	s.render(w, r, "index.html", page)
}

func (s *Server) indexRow(e news.OverviewEntry) indexRow {
	subject := textdecode.DecodeHeader(e.Subject)
	if strings.TrimSpace(subject) == "" {
		subject = article.DefaultSubject
	}
	author := textdecode.DecodeHeader(e.Author)
	if strings.TrimSpace(author) == "" {
		author = article.DefaultAuthor
	}
	return indexRow{
		ID:      e.ArticleID,
		Subject: subject,
		Author:  author,
		Date:    displayDate(e.Date, s.loc),
	}
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseArticleID(chi.URLParam(r, "articleID"))
	if !ok {
		s.fail(w, r, errNotFound)
		return
	}
	a, err := s.fetchArticle(r, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	subject := textdecode.DecodeHeader(a.Subject)
	page := articlePage{
		ID:       id,
		Subject:  subject,
		Author:   textdecode.DecodeHeader(a.Author),
		Date:     displayDate(a.Date, s.loc),
		ReplyURL: replyLink(s.replyURL, a.MessageID, subject),
		Body:     bodyHTML(a.BodyText),
	}
	for _, p := range a.Parts {
		view := attachmentView{
			Index:       p.Index,
			Name:        p.DisplayName(),
			ContentType: p.ContentType,
			Size:        p.Size(),
		}
		if p.Kind == article.InlineImage {
			view.Image = true
			view.DataURI = template.URL("data:" + p.ContentType + ";base64," + base64.StdEncoding.EncodeToString(p.Payload))
		}
		page.Attachments = append(page.Attachments, view)
	}
	s.render(w, r, "article.html", page)
}

func (s *Server) handleAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseArticleID(chi.URLParam(r, "articleID"))
	if !ok {
		s.fail(w, r, errNotFound)
		return
	}
	index, ok := parsePartIndex(chi.URLParam(r, "index"))
	if !ok {
		s.fail(w, r, errNotFound)
		return
	}
	a, err := s.fetchArticle(r, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, ok := a.Part(index)
	if !ok {
		s.fail(w, r, errAttachmentNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+p.DownloadName()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(p.Size()))
	w.WriteHeader(http.StatusOK)
	w.Write(p.Payload)
}

// fetchArticle retrieves and decomposes article id over a fresh session.
func (s *Server) fetchArticle(r *http.Request, id int64) (*article.Article, error) {
	sess := s.session(r)
	defer s.closeSession(sess)

	raw, err := sess.FetchArticleRaw(r.Context(), id)
	if err != nil {
		return nil, err
	}
	a := article.Decompose(raw)
	if len(a.Defects) > 0 {
		metrics.AddArticleDefects(len(a.Defects))
		logger.WithRequest(r.Context(), s.log).Debug("article defects",
			zap.Int64("article", id),
			zap.Strings("defects", a.Defects),
		)
	}
	return a, nil
}

// bodyHTML escapes text for a <pre> block and turns newlines into <br>.
func bodyHTML(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
