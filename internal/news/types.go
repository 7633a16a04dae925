// Package news is the gateway's view of the article store: the backend
// contract and the per-request session built on top of it.
package news

import (
	"context"
	"errors"

	"github.com/emurenMRz/newsview/internal/paging"
)

// Group is the reply to a group selection.
type Group struct {
	Name  string
	Count int64
	First int64
	Last  int64
}

// Bounds returns the article number range of g.
func (g Group) Bounds() paging.Bounds {
	return paging.Bounds{First: g.First, Last: g.Last}
}

// OverviewEntry summarises one article. Values are raw header text.
type OverviewEntry struct {
	ArticleID int64
	Subject   string
	Author    string
	Date      string
	MessageID string
}

// Backend is one connection to an article store. Implementations need not be
// safe for concurrent use. Negative replies should be returned as
// *textproto.Error so the session can tell them apart from broken
// connections.
type Backend interface {
	// SelectGroup makes name the current group.
	SelectGroup(ctx context.Context, name string) (Group, error)
	// Overview lists the current group's articles in [start, end], ascending.
	Overview(ctx context.Context, start, end int64) ([]OverviewEntry, error)
	// Article returns the full article, header and body, lines joined by "\n".
	Article(ctx context.Context, id int64) ([]byte, error)
	Close() error
}

// Dialer opens backend connections.
type Dialer interface {
	Dial(ctx context.Context) (Backend, error)
}

// UpstreamError is a failure reported by, or while talking to, the backend.
// Its message is the backend's own status text.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err came from the backend.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
