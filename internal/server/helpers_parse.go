package server

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/emurenMRz/newsview/internal/article"
)

// parseDate reads a Date header. The zero time means unparseable.
func parseDate(dateStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}
	}
	if t, err := mail.ParseDate(dateStr); err == nil {
		return t
	}
	// common fallbacks
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC850,
		time.RFC3339,
		time.ANSIC,
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}

// displayDate renders a Date header. Without a display zone the header is
// shown as sent.
func displayDate(dateStr string, loc *time.Location) string {
	if strings.TrimSpace(dateStr) == "" {
		return article.DefaultDate
	}
	if loc == nil {
		return dateStr
	}
	t := parseDate(dateStr)
	if t.IsZero() {
		return article.DefaultDate
	}
	return t.In(loc).Format(time.RFC3339)
}

// parseArticleID accepts positive decimal article numbers only.
func parseArticleID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePartIndex accepts non-negative decimal part indexes.
func parsePartIndex(raw string) (int, bool) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// replyLink points base at the article being answered. It returns "" when no
// reply page is configured.
func replyLink(base, messageID, subject string) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(subject, "Re:") {
		subject = "Re: " + subject
	}
	q := u.Query()
	q.Set("r", messageID)
	q.Set("subject", subject)
	u.RawQuery = q.Encode()
	return u.String()
}
