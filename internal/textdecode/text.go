// Package textdecode turns raw article bytes and header values into display
// strings. Nothing in here returns an error: unknown character sets and broken
// byte sequences degrade to Latin-1 or U+FFFD instead.
package textdecode

import (
	"strings"

	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCharset is assumed when a part does not declare one.
const DefaultCharset = "utf-8"

// DecodeText decodes payload as charset, or as UTF-8 when charset is empty.
// Invalid sequences become U+FFFD. An unknown charset, or one whose decoder
// rejects the payload, falls back to Latin-1.
func DecodeText(payload []byte, charset string) string {
	s, _ := Decode(payload, charset)
	return s
}

// Decode is DecodeText that also reports whether the declared charset was
// honoured. exact is false when the Latin-1 fallback was used.
func Decode(payload []byte, charset string) (text string, exact bool) {
	enc := Lookup(charset)
	if enc == nil {
		return Latin1(payload), false
	}
	b, err := enc.NewDecoder().Bytes(payload)
	if err != nil {
		return Latin1(payload), false
	}
	return string(b), true
}

// Lookup resolves a charset label to an encoding. The MIME and IANA registries
// are consulted first, then the WHATWG labels used by browsers, which know a
// few aliases (gb2312, x-sjis, ...) the registries do not. An empty label means
// UTF-8. Nil is returned for labels nobody knows or cannot decode.
func Lookup(charset string) encoding.Encoding {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return unicode.UTF8
	}
	if enc, err := ianaindex.MIME.Encoding(name); err == nil && enc != nil {
		return enc
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	if enc, _ := htmlcharset.Lookup(name); enc != nil {
		return enc
	}
	return nil
}

// Latin1 maps every byte to the code point of the same value.
func Latin1(payload []byte) string {
	b, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
	if err != nil {
		// charmap decoders do not fail on ISO-8859-1, keep the loop anyway
		r := make([]rune, len(payload))
		for i, c := range payload {
			r[i] = rune(c)
		}
		return string(r)
	}
	return string(b)
}
