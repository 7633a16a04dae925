package newsheader

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalize completes the header of an article about to be stored: a missing
// Date becomes received, a missing Message-ID gets a fresh time-ordered one
// at domain, and a missing Newsgroups names group. Junk lines are dropped and
// the header is rewritten with "\n" line endings. The findings list what was
// missing.
func Normalize(raw []byte, group, domain string, received time.Time) ([]byte, []Finding, error) {
	block, body := Split(raw)
	h := Parse(block)

	var results []Finding
	add := func(name, value string) {
		results = append(results, Finding{Field: name, Status: StatusMissing})
		h.fields = append(h.fields, Field{Name: name, Values: []string{value}})
	}

	if _, exists := h.Get("date"); !exists {
		add("Date", received.Format(time.RFC1123Z))
	}
	if _, exists := h.Get("message-id"); !exists {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, nil, fmt.Errorf("message-id: %w", err)
		}
		add("Message-ID", fmt.Sprintf("<%s@%s>", id, domain))
	}
	if _, exists := h.Get("newsgroups"); !exists && group != "" {
		add("Newsgroups", group)
	}

	var out bytes.Buffer
	out.WriteString(rebuildHeader(h))
	out.WriteString("\n")
	out.Write(bytes.ReplaceAll(body, []byte("\r\n"), []byte("\n")))
	return out.Bytes(), results, nil
}

func rebuildHeader(h Fields) string {
	var folded strings.Builder

	for _, field := range h.fields {
		if len(field.Values) == 0 {
			continue
		}
		folded.WriteString(field.Name + ": " + field.Values[0] + "\n")
		for _, value := range field.Values[1:] {
			folded.WriteString("\t" + value + "\n")
		}
	}
	return folded.String()
}
