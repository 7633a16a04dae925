package news_test

import (
	"context"
	"errors"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emurenMRz/newsview/internal/news"
)

type fakeBackend struct {
	groups   map[string]news.Group
	articles map[int64][]byte

	overviewRanges [][2]int64
	articleErr     error
	closed         bool
}

func (b *fakeBackend) SelectGroup(_ context.Context, name string) (news.Group, error) {
	g, ok := b.groups[name]
	if !ok {
		return news.Group{}, &textproto.Error{Code: 411, Msg: "No such newsgroup"}
	}
	return g, nil
}

func (b *fakeBackend) Overview(_ context.Context, start, end int64) ([]news.OverviewEntry, error) {
	b.overviewRanges = append(b.overviewRanges, [2]int64{start, end})
	var out []news.OverviewEntry
	for id := start; id <= end; id++ {
		out = append(out, news.OverviewEntry{ArticleID: id})
	}
	return out, nil
}

func (b *fakeBackend) Article(_ context.Context, id int64) ([]byte, error) {
	if b.articleErr != nil {
		return nil, b.articleErr
	}
	raw, ok := b.articles[id]
	if !ok {
		return nil, &textproto.Error{Code: 423, Msg: "No article with that number"}
	}
	return raw, nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

type fakeDialer struct {
	dials   int
	err     error
	backend func() *fakeBackend
	last    *fakeBackend
}

func (d *fakeDialer) Dial(context.Context) (news.Backend, error) {
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	d.last = d.backend()
	return d.last, nil
}

func newDialer() *fakeDialer {
	return &fakeDialer{backend: func() *fakeBackend {
		return &fakeBackend{
			groups: map[string]news.Group{
				"sharknews": {Name: "sharknews", Count: 11, First: 10, Last: 20},
				"empty":     {Name: "empty", First: 5, Last: 4},
			},
			articles: map[int64][]byte{12: []byte("Subject: x\n\nbody")},
		}
	}}
}

func TestSessionConnectsLazilyOnce(t *testing.T) {
	d := newDialer()
	s := news.NewSession(d, "sharknews", nil)
	require.Equal(t, 0, d.dials)

	ctx := context.Background()
	require.NoError(t, s.EnsureConnected(ctx))
	require.NoError(t, s.EnsureConnected(ctx))
	_, err := s.FetchArticleRaw(ctx, 12)
	require.NoError(t, err)
	require.Equal(t, 1, d.dials)

	require.NoError(t, s.Close())
	require.True(t, d.last.closed)

	_, err = s.Bounds(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, d.dials)
}

func TestSessionBounds(t *testing.T) {
	s := news.NewSession(newDialer(), "sharknews", nil)
	g, err := s.Bounds(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(10), g.Bounds().First)
	require.Equal(t, int64(20), g.Bounds().Last)
}

func TestFetchOverviewClampsRange(t *testing.T) {
	d := newDialer()
	s := news.NewSession(d, "sharknews", nil)

	entries, err := s.FetchOverview(context.Background(), "sharknews", 1, 100)
	require.NoError(t, err)
	require.Len(t, entries, 11)
	require.Equal(t, [][2]int64{{10, 20}}, d.last.overviewRanges)
	require.Equal(t, int64(10), entries[0].ArticleID)
}

func TestFetchOverviewEmptyRangeSkipsBackend(t *testing.T) {
	d := newDialer()
	s := news.NewSession(d, "sharknews", nil)

	entries, err := s.FetchOverview(context.Background(), "empty", 5, 4)
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
	require.Empty(t, d.last.overviewRanges)
}

func TestFetchArticleRaw(t *testing.T) {
	s := news.NewSession(newDialer(), "sharknews", nil)
	raw, err := s.FetchArticleRaw(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, "Subject: x\n\nbody", string(raw))
}

func TestProtocolErrorKeepsConnection(t *testing.T) {
	d := newDialer()
	s := news.NewSession(d, "sharknews", nil)
	ctx := context.Background()

	_, err := s.FetchArticleRaw(ctx, 99)
	require.Error(t, err)
	require.True(t, news.IsUpstream(err))
	require.Equal(t, "423 No article with that number", err.Error())

	var ue *news.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "article", ue.Op)

	_, err = s.FetchArticleRaw(ctx, 12)
	require.NoError(t, err)
	require.Equal(t, 1, d.dials)
}

func TestNetworkErrorDropsConnection(t *testing.T) {
	d := newDialer()
	s := news.NewSession(d, "sharknews", nil)
	ctx := context.Background()

	require.NoError(t, s.EnsureConnected(ctx))
	broken := d.last
	broken.articleErr = errors.New("read tcp: i/o timeout")

	_, err := s.FetchArticleRaw(ctx, 12)
	require.True(t, news.IsUpstream(err))
	require.Contains(t, err.Error(), "i/o timeout")
	require.True(t, broken.closed)

	_, err = s.FetchArticleRaw(ctx, 12)
	require.NoError(t, err)
	require.Equal(t, 2, d.dials)
}

func TestDialFailure(t *testing.T) {
	d := newDialer()
	d.err = errors.New("dial tcp: connection refused")
	s := news.NewSession(d, "sharknews", nil)

	_, err := s.Bounds(context.Background())
	var ue *news.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "connect", ue.Op)
	require.Equal(t, "dial tcp: connection refused", err.Error())
}

func TestUnknownGroup(t *testing.T) {
	d := newDialer()
	s := news.NewSession(d, "nosuchgroup", nil)

	err := s.EnsureConnected(context.Background())
	var ue *news.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "group", ue.Op)
	require.Contains(t, err.Error(), "No such newsgroup")
	require.True(t, d.last.closed)
}

func TestIsUpstream(t *testing.T) {
	require.False(t, news.IsUpstream(errors.New("plain")))
	require.False(t, news.IsUpstream(nil))
}
