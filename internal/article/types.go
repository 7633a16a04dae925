package article

import (
	"strings"
	"unicode"
)

// Placeholders for missing header fields.
const (
	DefaultSubject = "No Subject"
	DefaultAuthor  = "Anonymous"
	DefaultDate    = "Unknown Date"
)

// Kind decides how a non-text part is presented.
type Kind int

const (
	Downloadable Kind = iota
	InlineImage
)

func (k Kind) String() string {
	if k == InlineImage {
		return "inline-image"
	}
	return "downloadable"
}

// Part is a non-text part of an article. Index counts non-text parts only,
// starting at 0, in document order.
type Part struct {
	Index       int
	Filename    string // declared filename, possibly empty
	ContentType string // lower-case media type without parameters
	Payload     []byte // transfer-decoded content
	Kind        Kind
}

// DisplayName is the name shown on the article page.
func (p Part) DisplayName() string {
	if strings.TrimSpace(p.Filename) == "" {
		return "Unnamed"
	}
	return p.Filename
}

// DownloadName is the filename offered in Content-Disposition. Quotes,
// backslashes, path separators and control characters are not kept.
func (p Part) DownloadName() string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '"', r == '\\', r == '/':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, p.Filename)
	if strings.TrimSpace(name) == "" {
		return "attachment.bin"
	}
	return name
}

// Size is the decoded payload length in bytes.
func (p Part) Size() int {
	return len(p.Payload)
}

// Article is a decomposed article. Header values are raw, not yet RFC 2047
// decoded.
type Article struct {
	Subject   string
	Author    string
	Date      string
	MessageID string

	BodyText string
	Parts    []Part

	// Defects lists problems that were worked around while decomposing.
	Defects []string
}

// Part returns the non-text part with the given index.
func (a *Article) Part(index int) (Part, bool) {
	if index < 0 || index >= len(a.Parts) {
		return Part{}, false
	}
	return a.Parts[index], true
}
