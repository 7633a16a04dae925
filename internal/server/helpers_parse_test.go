package server

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	for _, in := range []string{
		"Mon, 02 Jan 2006 15:04:05 +0000",
		"2 Jan 2006 15:04:05 GMT",
		"2006-01-02T15:04:05Z",
		"Mon Jan  2 15:04:05 2006",
	} {
		require.True(t, want.Equal(parseDate(in)), in)
	}
	require.True(t, parseDate("yesterday").IsZero())
	require.True(t, parseDate("").IsZero())
}

func TestDisplayDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	tests := []struct {
		in   string
		loc  *time.Location
		want string
	}{
		{"Mon, 02 Jan 2006 15:04:05 +0000", nil, "Mon, 02 Jan 2006 15:04:05 +0000"},
		{"whenever", nil, "whenever"},
		{"", nil, "Unknown Date"},
		{"Mon, 02 Jan 2006 15:04:05 +0000", tokyo, "2006-01-03T00:04:05+09:00"},
		{"whenever", tokyo, "Unknown Date"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, displayDate(tc.in, tc.loc), tc.in)
	}
}

func TestParseIdentifiers(t *testing.T) {
	id, ok := parseArticleID("42")
	require.True(t, ok)
	require.Equal(t, int64(42), id)
	for _, bad := range []string{"", "0", "-1", "+", "1e3", "abc", " 1"} {
		_, ok := parseArticleID(bad)
		require.False(t, ok, bad)
	}

	index, ok := parsePartIndex("0")
	require.True(t, ok)
	require.Zero(t, index)
	_, ok = parsePartIndex("-1")
	require.False(t, ok)
}

func TestReplyLink(t *testing.T) {
	require.Empty(t, replyLink("", "<a@b>", "Hi"))

	link := replyLink("https://post.example.org/reply", "<a@b>", "Hi")
	u, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "<a@b>", u.Query().Get("r"))
	require.Equal(t, "Re: Hi", u.Query().Get("subject"))

	link = replyLink("https://post.example.org/reply?lang=ja", "<a@b>", "Re: Hi")
	u, err = url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "Re: Hi", u.Query().Get("subject"))
	require.Equal(t, "ja", u.Query().Get("lang"))
}
