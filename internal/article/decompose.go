// Package article decomposes raw news articles into header fields, a text
// body and a list of non-text parts.
package article

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/emurenMRz/newsview/internal/newsheader"
	"github.com/emurenMRz/newsview/internal/textdecode"
)

type header interface {
	Get(string) string
}

// lenientHeader serves header lookups from newsheader when net/mail rejected
// the header block.
type lenientHeader struct {
	fields newsheader.Fields
}

func (h lenientHeader) Get(name string) string {
	v, _ := h.fields.Get(name)
	return v
}

// Decompose parses a raw article: a header block, an empty line, then the
// body. It never fails; anything it has to work around is recorded in
// Article.Defects.
//
// A single-part body becomes BodyText. A multipart body is flattened one
// level: text/* parts are decoded and concatenated into BodyText, every other
// part (nested multiparts included, kept opaque) is appended to Parts. The
// same input always yields the same part indexes.
func Decompose(raw []byte) *Article {
	a := &Article{}

	h, body := a.readHeader(raw)
	a.Subject = valueOr(h, "Subject", DefaultSubject)
	a.Author = valueOr(h, "From", DefaultAuthor)
	a.Date = valueOr(h, "Date", DefaultDate)
	a.MessageID = strings.TrimSpace(h.Get("Message-Id"))

	ctype, params := a.contentType(h, "article")
	if strings.HasPrefix(ctype, "multipart/") {
		if boundary := params["boundary"]; boundary != "" {
			a.walkParts(body, boundary)
			return a
		}
		a.defect("article: %s without boundary, reading as text", ctype)
	}

	payload := a.transferDecode(h, body, "article")
	a.BodyText = a.decodeText(payload, params["charset"], "article")
	return a
}

func (a *Article) defect(format string, args ...any) {
	a.Defects = append(a.Defects, fmt.Sprintf(format, args...))
}

func (a *Article) readHeader(raw []byte) (header, []byte) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err == nil {
		var body []byte
		if body, err = io.ReadAll(msg.Body); err == nil {
			return msg.Header, body
		}
	}
	a.defect("header: %v", err)

	block, body := newsheader.Split(raw)
	fields := newsheader.Parse(block)
	if fields.Len() == 0 && body == nil {
		// nothing header-like at all, show everything
		return lenientHeader{fields: fields}, raw
	}
	return lenientHeader{fields: fields}, body
}

func valueOr(h header, name, fallback string) string {
	if v := strings.TrimSpace(h.Get(name)); v != "" {
		return v
	}
	return fallback
}

// contentType returns the media type and parameters of an entity, defaulting
// to text/plain.
func (a *Article) contentType(h header, where string) (string, map[string]string) {
	raw := strings.TrimSpace(h.Get("Content-Type"))
	if raw == "" {
		return "text/plain", map[string]string{}
	}
	ctype, params, err := mime.ParseMediaType(raw)
	if err != nil {
		a.defect("%s: content-type %q: %v", where, raw, err)
	}
	if ctype == "" {
		ctype = "text/plain"
	}
	if params == nil {
		params = map[string]string{}
	}
	return ctype, params
}

// walkParts visits the parts of a multipart body in order. A broken stream
// ends the walk; what was collected so far is kept.
func (a *Article) walkParts(body []byte, boundary string) {
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for n := 0; ; n++ {
		p, err := mr.NextRawPart()
		if err == io.EOF {
			return
		}
		if err != nil {
			a.defect("multipart: part %d: %v", n, err)
			return
		}

		where := fmt.Sprintf("part %d", n)
		raw, err := io.ReadAll(p)
		if err != nil {
			a.defect("%s: %v", where, err)
			if len(raw) == 0 {
				return
			}
		}

		ctype, params := a.contentType(p.Header, where)
		if strings.HasPrefix(ctype, "text/") {
			payload := a.transferDecode(p.Header, raw, where)
			a.BodyText += a.decodeText(payload, params["charset"], where)
			continue
		}

		part := Part{
			Index:       len(a.Parts),
			Filename:    filename(p, params),
			ContentType: ctype,
			Kind:        Downloadable,
		}
		if strings.HasPrefix(ctype, "multipart/") {
			part.Payload = raw
		} else {
			part.Payload = a.transferDecode(p.Header, raw, where)
		}
		if strings.HasPrefix(ctype, "image/") {
			part.Kind = InlineImage
		}
		a.Parts = append(a.Parts, part)
	}
}

// filename prefers the Content-Disposition filename over the Content-Type
// name parameter.
func filename(p *multipart.Part, params map[string]string) string {
	name := p.FileName()
	if name == "" {
		name = params["name"]
	}
	return textdecode.DecodeParam(name)
}

// transferDecode undoes base64 and quoted-printable. On a decoding error the
// bytes decoded up to that point are used, or the raw body if there are none.
func (a *Article) transferDecode(h header, body []byte, where string) []byte {
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	var reader io.Reader
	switch cte {
	case "base64":
		reader = base64.NewDecoder(base64.StdEncoding, bytes.NewReader(body))
	case "quoted-printable":
		reader = quotedprintable.NewReader(bytes.NewReader(body))
	default:
		// 7bit, 8bit, binary
		return body
	}

	decoded, err := io.ReadAll(reader)
	if err == nil {
		return decoded
	}
	a.defect("%s: %s: %v", where, cte, err)
	if len(decoded) == 0 {
		return body
	}
	return decoded
}

func (a *Article) decodeText(payload []byte, charset, where string) string {
	text, exact := textdecode.Decode(payload, charset)
	if !exact {
		a.defect("%s: charset %q unsupported, decoded as latin-1", where, charset)
	}
	return text
}
