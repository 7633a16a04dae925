// Package newsheader is a forgiving reader for article header blocks. It is
// used where net/mail gives up: a header block with junk lines, a missing
// colon or a stray continuation line still yields whatever fields can be
// recognised.
package newsheader

import (
	"bufio"
	"bytes"
	"strings"
)

// Field is one header field with its folded continuation lines.
type Field struct {
	Name   string   // original field-name
	Values []string // folded lines, leading whitespace trimmed
}

// Value joins the folded lines of f with single spaces.
func (f Field) Value() string {
	return strings.TrimSpace(strings.Join(f.Values, " "))
}

// Fields is a header block in original order.
type Fields struct {
	keys   map[string]int // lowercased field-name -> index of first occurrence
	fields []Field
}

// Parse reads a header block. Lines that are neither a field nor a
// continuation are skipped, and so is a continuation following such a line.
func Parse(block []byte) Fields {
	h := Fields{keys: map[string]int{}}
	var current *Field

	scanner := bufio.NewScanner(bytes.NewReader(block))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if current != nil {
				current.Values = append(current.Values, strings.TrimLeft(line, " \t"))
			}
			continue
		}

		i := strings.Index(line, ":")
		if i <= 0 {
			current = nil
			continue
		}
		name := strings.TrimSpace(line[:i])
		if name == "" || strings.ContainsAny(name, " \t") {
			current = nil
			continue
		}
		h.fields = append(h.fields, Field{
			Name:   name,
			Values: []string{strings.TrimSpace(line[i+1:])},
		})
		current = &h.fields[len(h.fields)-1]
		if _, exists := h.keys[strings.ToLower(name)]; !exists {
			h.keys[strings.ToLower(name)] = len(h.fields) - 1
		}
	}
	return h
}

// Get returns the value of the first field called name, case-insensitively.
func (h Fields) Get(name string) (string, bool) {
	i, ok := h.keys[strings.ToLower(name)]
	if !ok || i >= len(h.fields) {
		return "", false
	}
	return h.fields[i].Value(), true
}

// Len is the number of fields, duplicates included.
func (h Fields) Len() int {
	return len(h.fields)
}

// All returns the fields in original order.
func (h Fields) All() []Field {
	return h.fields
}

// Split cuts a raw article at the first empty line. The separator is dropped.
// Without an empty line the whole input is the header block.
func Split(raw []byte) (header, body []byte) {
	switch {
	case bytes.HasPrefix(raw, []byte("\r\n")):
		return nil, raw[2:]
	case bytes.HasPrefix(raw, []byte("\n")):
		return nil, raw[1:]
	}
	i := bytes.Index(raw, []byte("\n\n"))
	j := bytes.Index(raw, []byte("\r\n\r\n"))
	switch {
	case j != -1 && (i == -1 || j < i):
		return raw[:j+2], raw[j+4:]
	case i != -1:
		return raw[:i+1], raw[i+2:]
	}
	return raw, nil
}
