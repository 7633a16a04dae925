package newsheader_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emurenMRz/newsview/internal/newsheader"
)

func TestParseFolding(t *testing.T) {
	block := []byte("Subject: first\n  second\nFrom: a@example.org\nsubject: duplicate\n")
	h := newsheader.Parse(block)

	require.Equal(t, 3, h.Len())
	subject, ok := h.Get("SUBJECT")
	require.True(t, ok)
	require.Equal(t, "first second", subject)

	from, ok := h.Get("from")
	require.True(t, ok)
	require.Equal(t, "a@example.org", from)

	_, ok = h.Get("date")
	require.False(t, ok)
}

func TestParseSkipsJunk(t *testing.T) {
	block := []byte("\tstray continuation\nnot a header line\n  continuation of junk\nBad Name: x\nDate: Mon, 2 Jan 2006 15:04:05 -0700\r\n")
	h := newsheader.Parse(block)

	require.Equal(t, 1, h.Len())
	date, ok := h.Get("Date")
	require.True(t, ok)
	require.Equal(t, "Mon, 2 Jan 2006 15:04:05 -0700", date)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantHeader string
		wantBody   string
	}{
		{name: "lf", raw: "A: 1\nB: 2\n\nbody\nmore", wantHeader: "A: 1\nB: 2\n", wantBody: "body\nmore"},
		{name: "crlf", raw: "A: 1\r\n\r\nbody", wantHeader: "A: 1\r\n", wantBody: "body"},
		{name: "no separator", raw: "A: 1\nB: 2", wantHeader: "A: 1\nB: 2", wantBody: ""},
		{name: "no header", raw: "\nbody", wantHeader: "", wantBody: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body := newsheader.Split([]byte(tt.raw))
			require.Equal(t, tt.wantHeader, string(header))
			require.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestValidate(t *testing.T) {
	h := newsheader.Parse([]byte("From: not an address <<\nDate: yesterday\nMessage-ID: <ok@example.org>\nSubject: hi\n"))
	findings := newsheader.Validate(h)

	require.ElementsMatch(t, []newsheader.Finding{
		{Field: "Newsgroups", Status: newsheader.StatusMissing},
		{Field: "From", Status: newsheader.StatusInvalid, Detail: "Invalid From address format"},
		{Field: "Date", Status: newsheader.StatusInvalid, Detail: "Invalid Date format"},
	}, findings)
}

func TestIsValidMessageID(t *testing.T) {
	require.True(t, newsheader.IsValidMessageID("<abc.123@news.example.org>"))
	require.False(t, newsheader.IsValidMessageID("abc@example.org"))
	require.False(t, newsheader.IsValidMessageID("<no-domain>"))
}

func TestSyntheticMessageIDIsStable(t *testing.T) {
	block := []byte("Subject: hi\nFrom: a@example.org\n")
	id1 := newsheader.SyntheticMessageID(block, "newsview")
	id2 := newsheader.SyntheticMessageID(block, "newsview")

	require.Equal(t, id1, id2)
	require.True(t, newsheader.IsValidMessageID(id1))
	require.NotEqual(t, id1, newsheader.SyntheticMessageID([]byte("Subject: other\n"), "newsview"))
}

func TestNormalizeAddsMissingFields(t *testing.T) {
	received := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := []byte("Subject: hi\r\n  there\r\nnot a header\r\nFrom: a@example.org\r\n\r\nbody\r\nline")

	out, findings, err := newsheader.Normalize(raw, "sharknews", "example.org", received)
	require.NoError(t, err)
	require.Equal(t, []newsheader.Finding{
		{Field: "Date", Status: newsheader.StatusMissing},
		{Field: "Message-ID", Status: newsheader.StatusMissing},
		{Field: "Newsgroups", Status: newsheader.StatusMissing},
	}, findings)

	header, body := newsheader.Split(out)
	require.Equal(t, "body\nline", string(body))

	h := newsheader.Parse(header)
	subject, _ := h.Get("Subject")
	require.Equal(t, "hi there", subject)
	date, _ := h.Get("Date")
	require.Equal(t, "Fri, 01 Mar 2024 12:00:00 +0000", date)
	groups, _ := h.Get("Newsgroups")
	require.Equal(t, "sharknews", groups)
	id, _ := h.Get("Message-ID")
	require.True(t, newsheader.IsValidMessageID(id), id)
	require.True(t, strings.HasSuffix(id, "@example.org>"))
	require.Empty(t, newsheader.Validate(h))
}

func TestNormalizeKeepsCompleteHeader(t *testing.T) {
	raw := []byte("From: a@example.org\nDate: Mon, 02 Jan 2006 15:04:05 +0000\nMessage-ID: <x@y>\nNewsgroups: sharknews\nSubject: s\n\nbody")

	out, findings, err := newsheader.Normalize(raw, "sharknews", "example.org", time.Now())
	require.NoError(t, err)
	require.Empty(t, findings)
	require.Equal(t, string(raw), string(out))
}
