// Package nntp is a minimal NNTP reader client: GROUP, OVER/XOVER, ARTICLE
// and QUIT, which is all the gateway needs from a news server.
package nntp

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/emurenMRz/newsview/internal/news"
)

// Reply codes, RFC 3977.
const (
	codePostingAllowed    = 200
	codeNoPosting         = 201
	codeClosing           = 205
	codeGroupSelected     = 211
	codeArticleFollows    = 220
	codeOverviewFollows   = 224
	codeNoArticleInRange  = 423
	codeUnknownCommand    = 500
	codeSyntaxError       = 501
	defaultCommandTimeout = 30 * time.Second
)

// Dialer connects to a news server. It implements news.Dialer.
type Dialer struct {
	Addr string
	// Timeout bounds connecting and every command round trip. Zero means
	// 30 seconds.
	Timeout time.Duration
}

// Dial connects and reads the server greeting.
func (d Dialer) Dial(ctx context.Context) (news.Backend, error) {
	c, err := Connect(ctx, d.Addr, d.Timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Conn is one NNTP connection.
type Conn struct {
	conn    net.Conn
	text    *textproto.Conn
	timeout time.Duration

	noOver bool // server rejected OVER, use XOVER
}

// Connect dials addr and waits for a 200 or 201 greeting.
func Connect(ctx context.Context, addr string, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	nd := net.Dialer{Timeout: timeout}
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	c := &Conn{conn: conn, text: textproto.NewConn(conn), timeout: timeout}
	if err := c.setDeadline(ctx); err != nil {
		c.text.Close()
		return nil, err
	}
	code, msg, err := c.text.ReadCodeLine(2)
	if err != nil {
		c.text.Close()
		return nil, err
	}
	if code != codePostingAllowed && code != codeNoPosting {
		c.text.Close()
		return nil, &textproto.Error{Code: code, Msg: msg}
	}
	return c, nil
}

// setDeadline applies the earlier of the context deadline and the command
// timeout to the connection.
func (c *Conn) setDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.conn.SetDeadline(deadline)
}

// command sends one command line and reads the status line. A status other
// than expectCode is returned as *textproto.Error.
func (c *Conn) command(ctx context.Context, expectCode int, format string, args ...any) (int, string, error) {
	if err := c.setDeadline(ctx); err != nil {
		return 0, "", err
	}
	if err := c.text.PrintfLine(format, args...); err != nil {
		return 0, "", err
	}
	return c.text.ReadCodeLine(expectCode)
}

// SelectGroup sends GROUP. The reply is "211 count first last name".
func (c *Conn) SelectGroup(ctx context.Context, name string) (news.Group, error) {
	_, msg, err := c.command(ctx, codeGroupSelected, "GROUP %s", name)
	if err != nil {
		return news.Group{}, err
	}

	fields := strings.Fields(msg)
	if len(fields) < 3 {
		return news.Group{}, fmt.Errorf("malformed GROUP reply %q", msg)
	}
	var nums [3]int64
	for i := range nums {
		if nums[i], err = strconv.ParseInt(fields[i], 10, 64); err != nil {
			return news.Group{}, fmt.Errorf("malformed GROUP reply %q: %w", msg, err)
		}
	}
	g := news.Group{Name: name, Count: nums[0], First: nums[1], Last: nums[2]}
	if len(fields) > 3 {
		g.Name = fields[3]
	}
	return g, nil
}

// Overview sends OVER, or XOVER for servers that do not know OVER. An empty
// range is not an error.
func (c *Conn) Overview(ctx context.Context, start, end int64) ([]news.OverviewEntry, error) {
	verb := "OVER"
	if c.noOver {
		verb = "XOVER"
	}

	code, _, err := c.command(ctx, codeOverviewFollows, "%s %d-%d", verb, start, end)
	if err != nil && !c.noOver && (code == codeUnknownCommand || code == codeSyntaxError) {
		c.noOver = true
		code, _, err = c.command(ctx, codeOverviewFollows, "XOVER %d-%d", start, end)
	}
	if code == codeNoArticleInRange {
		return []news.OverviewEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	lines, err := c.text.ReadDotLines()
	if err != nil {
		return nil, err
	}
	entries := make([]news.OverviewEntry, 0, len(lines))
	for _, line := range lines {
		if e, ok := parseOverviewLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// parseOverviewLine reads the default overview format: number, Subject,
// From, Date, Message-ID, References, bytes, lines.
func parseOverviewLine(line string) (news.OverviewEntry, bool) {
	fields := strings.Split(line, "\t")
	id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return news.OverviewEntry{}, false
	}
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return news.OverviewEntry{
		ArticleID: id,
		Subject:   field(1),
		Author:    field(2),
		Date:      field(3),
		MessageID: field(4),
	}, true
}

// Article sends ARTICLE and returns the dot-decoded lines joined by "\n".
func (c *Conn) Article(ctx context.Context, id int64) ([]byte, error) {
	if _, _, err := c.command(ctx, codeArticleFollows, "ARTICLE %d", id); err != nil {
		return nil, err
	}
	lines, err := c.text.ReadDotLines()
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// Close says QUIT and closes the connection. The QUIT reply is not waited
// for longer than a second.
func (c *Conn) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _, _ = c.command(ctx, codeClosing, "QUIT")
	return c.text.Close()
}
