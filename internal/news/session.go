package news

import (
	"context"
	"errors"
	"net/textproto"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emurenMRz/newsview/internal/metrics"
)

// Session owns at most one backend connection, opened on first use. The
// gateway creates one Session per request and closes it when the request is
// done; the mutex keeps a shared Session correct as well.
type Session struct {
	dialer Dialer
	group  string
	log    *zap.Logger

	mu      sync.Mutex
	backend Backend
}

// NewSession returns an unconnected session for group.
func NewSession(dialer Dialer, group string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{dialer: dialer, group: group, log: log}
}

// EnsureConnected connects and selects the session's group unless a
// connection is already open.
func (s *Session) EnsureConnected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureConnected(ctx)
}

func (s *Session) ensureConnected(ctx context.Context) error {
	if s.backend != nil {
		return nil
	}

	var b Backend
	err := s.call("connect", func() (err error) {
		b, err = s.dialer.Dial(ctx)
		return err
	})
	if err != nil {
		return err
	}
	s.backend = b

	if _, err := s.selectGroup(ctx, s.group); err != nil {
		s.drop()
		return err
	}
	s.log.Debug("backend connected", zap.String("group", s.group))
	return nil
}

// Bounds re-selects the session's group and returns its current state.
func (s *Session) Bounds(ctx context.Context) (Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(ctx); err != nil {
		return Group{}, err
	}
	return s.selectGroup(ctx, s.group)
}

// FetchOverview lists group's articles in [start, end]. The range is clamped
// to the group's current bounds first, so stale numbers computed by the caller
// are harmless. Entries come back ascending by article number.
func (s *Session) FetchOverview(ctx context.Context, group string, start, end int64) ([]OverviewEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}
	g, err := s.selectGroup(ctx, group)
	if err != nil {
		return nil, err
	}

	if start < g.First {
		start = g.First
	}
	if end > g.Last {
		end = g.Last
	}
	if start > end {
		return []OverviewEntry{}, nil
	}

	var entries []OverviewEntry
	err = s.call("overview", func() (err error) {
		entries, err = s.backend.Overview(ctx, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FetchArticleRaw returns the full article id of the session's group.
func (s *Session) FetchArticleRaw(ctx context.Context, id int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.call("article", func() (err error) {
		raw, err = s.backend.Article(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Close releases the connection. A later call reconnects.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		return nil
	}
	err := s.backend.Close()
	s.backend = nil
	return err
}

func (s *Session) selectGroup(ctx context.Context, name string) (Group, error) {
	var g Group
	err := s.call("group", func() (err error) {
		g, err = s.backend.SelectGroup(ctx, name)
		return err
	})
	return g, err
}

// call runs one backend operation, records it and wraps its error. A failure
// that is not a protocol reply leaves the connection in an unknown state, so
// it is dropped.
func (s *Session) call(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordUpstreamCall(op, status, time.Since(start))

	if err == nil {
		return nil
	}
	var protoErr *textproto.Error
	if !errors.As(err, &protoErr) && s.backend != nil {
		s.drop()
	}
	s.log.Debug("backend call failed", zap.String("op", op), zap.Error(err))
	return &UpstreamError{Op: op, Err: err}
}

func (s *Session) drop() {
	if s.backend == nil {
		return
	}
	if err := s.backend.Close(); err != nil {
		s.log.Debug("closing backend", zap.Error(err))
	}
	s.backend = nil
}
