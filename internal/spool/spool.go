// Package spool serves newsgroups out of a directory of mbox files. Each file
// is one group, named by the group name in IMAP modified UTF-7, and articles
// are numbered 1..n by their position in the file.
package spool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-imap/utf7"
	"github.com/emersion/go-mbox"

	"github.com/emurenMRz/newsview/internal/news"
	"github.com/emurenMRz/newsview/internal/newsheader"
)

// MessageIDDomain is the right-hand side of synthetic Message-IDs.
const MessageIDDomain = "newsview"

var (
	errNoSuchGroup    = &textproto.Error{Code: 411, Msg: "No such newsgroup"}
	errNoGroup        = &textproto.Error{Code: 412, Msg: "No newsgroup selected"}
	errNoSuchArticle  = &textproto.Error{Code: 423, Msg: "No article with that number"}
	errDirUnavailable = errors.New("spool directory unavailable")
)

// Dir is a spool directory. It implements news.Dialer.
type Dir struct {
	Path string
}

// Dial checks that the directory exists and returns a reader on it.
func (d Dir) Dial(ctx context.Context) (news.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fi, err := os.Stat(d.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDirUnavailable, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errDirUnavailable, d.Path)
	}
	return &Reader{dir: d.Path}, nil
}

// Groups lists the group names found in the directory.
func (d Dir) Groups() ([]string, error) {
	files, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, err
	}
	var groups []string
	for _, file := range files {
		if file.IsDir() || strings.HasPrefix(file.Name(), ".") {
			continue
		}
		name, err := utf7.Encoding.NewDecoder().String(file.Name())
		if err != nil {
			continue
		}
		groups = append(groups, name)
	}
	return groups, nil
}

// GroupPath returns the mbox file holding group.
func (d Dir) GroupPath(group string) (string, error) {
	return groupPath(d.Path, group)
}

func groupPath(dir, group string) (string, error) {
	if group == "" || strings.ContainsAny(group, `/\`) || group == "." || group == ".." {
		return "", errNoSuchGroup
	}
	encoded, err := utf7.Encoding.NewEncoder().String(group)
	if err != nil {
		return "", errNoSuchGroup
	}
	return filepath.Join(dir, encoded), nil
}

// Append adds raw as the newest article of group, creating the group file if
// needed. The envelope sender is taken from the From header.
func (d Dir) Append(group string, raw []byte, received time.Time) error {
	path, err := d.GroupPath(group)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o660)
	if err != nil {
		return err
	}
	defer f.Close()

	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasSuffix(raw, []byte("\n")) {
		raw = append(raw, '\n')
	}

	w := mbox.NewWriter(f)
	mw, err := w.CreateMessage(envelopeSender(raw), received)
	if err != nil {
		return err
	}
	if _, err := mw.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

func envelopeSender(raw []byte) string {
	block, _ := newsheader.Split(raw)
	from, _ := newsheader.Parse(block).Get("From")
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Address
	}
	return "MAILER-DAEMON"
}

// Reader is a snapshot of one selected group. SelectGroup rereads the file.
type Reader struct {
	dir      string
	group    string
	articles [][]byte // index n-1 holds article n, nil for deleted messages
}

// SelectGroup loads group from disk.
func (r *Reader) SelectGroup(ctx context.Context, name string) (news.Group, error) {
	if err := ctx.Err(); err != nil {
		return news.Group{}, err
	}
	path, err := groupPath(r.dir, name)
	if err != nil {
		return news.Group{}, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return news.Group{}, errNoSuchGroup
	}
	if err != nil {
		return news.Group{}, err
	}
	defer f.Close()

	articles, err := ReadArticles(f)
	if err != nil {
		return news.Group{}, fmt.Errorf("reading %s: %w", name, err)
	}
	r.group = name
	r.articles = articles

	g := news.Group{Name: name}
	for i, a := range articles {
		if a == nil {
			continue
		}
		n := int64(i + 1)
		if g.Count == 0 {
			g.First = n
		}
		g.Last = n
		g.Count++
	}
	if g.Count == 0 {
		// RFC 3977 empty group: last one below first
		g.First, g.Last = 1, 0
	}
	return g, nil
}

// Overview summarises the live articles in [start, end].
func (r *Reader) Overview(ctx context.Context, start, end int64) ([]news.OverviewEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.group == "" {
		return nil, errNoGroup
	}
	if start < 1 {
		start = 1
	}
	if end > int64(len(r.articles)) {
		end = int64(len(r.articles))
	}

	entries := []news.OverviewEntry{}
	for n := start; n <= end; n++ {
		raw := r.articles[n-1]
		if raw == nil {
			continue
		}
		entries = append(entries, overviewEntry(n, raw))
	}
	return entries, nil
}

// Article returns article id of the selected group.
func (r *Reader) Article(ctx context.Context, id int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.group == "" {
		return nil, errNoGroup
	}
	if id < 1 || id > int64(len(r.articles)) || r.articles[id-1] == nil {
		return nil, errNoSuchArticle
	}
	return bytes.Clone(r.articles[id-1]), nil
}

// Close forgets the loaded group.
func (r *Reader) Close() error {
	r.group = ""
	r.articles = nil
	return nil
}

// ReadArticles reads every message of an mbox stream. Messages marked
// deleted ("Status: D") are returned as nil so later articles keep their
// numbers. Line endings become "\n" and trailing newlines are dropped.
func ReadArticles(src io.Reader) ([][]byte, error) {
	var articles [][]byte
	mr := mbox.NewReader(src)
	for {
		msg, err := mr.NextMessage()
		if err == io.EOF {
			return articles, nil
		}
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", len(articles)+1, err)
		}
		raw, err := io.ReadAll(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", len(articles)+1, err)
		}

		raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
		raw = bytes.TrimRight(raw, "\n")
		if deleted(raw) {
			articles = append(articles, nil)
			continue
		}
		if raw == nil {
			raw = []byte{}
		}
		articles = append(articles, raw)
	}
}

func deleted(raw []byte) bool {
	block, _ := newsheader.Split(raw)
	status, _ := newsheader.Parse(block).Get("Status")
	return strings.TrimSpace(status) == "D"
}

func overviewEntry(n int64, raw []byte) news.OverviewEntry {
	block, _ := newsheader.Split(raw)
	h := newsheader.Parse(block)
	get := func(name string) string {
		v, _ := h.Get(name)
		return v
	}

	e := news.OverviewEntry{
		ArticleID: n,
		Subject:   get("Subject"),
		Author:    get("From"),
		Date:      get("Date"),
		MessageID: get("Message-ID"),
	}
	if e.MessageID == "" {
		e.MessageID = newsheader.SyntheticMessageID(block, MessageIDDomain)
	}
	return e
}
