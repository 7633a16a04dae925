package textdecode

import (
	"io"
	"mime"
	"strings"
	"unicode/utf8"
)

// wordDecoder never rejects a charset: every encoded-word payload goes through
// Decode, so an unknown or broken segment ends up as Latin-1 on its own
// without dragging the neighbouring segments down with it.
var wordDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		b, err := io.ReadAll(input)
		if err != nil {
			return nil, err
		}
		return strings.NewReader(DecodeText(b, charset)), nil
	},
}

// DecodeHeader decodes RFC 2047 encoded-words in a header value. Segments are
// concatenated in order; whitespace between two adjacent encoded-words is
// dropped, plain text passes through.
func DecodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		decoded = value
	}
	if !utf8.ValidString(decoded) {
		decoded = DecodeText([]byte(decoded), DefaultCharset)
	}
	return decoded
}

// DecodeParam decodes a Content-Type name or Content-Disposition filename
// parameter. mime.ParseMediaType already handles the RFC 2231 form; many
// clients put RFC 2047 encoded-words in there instead, so those get decoded
// here.
func DecodeParam(value string) string {
	if value == "" || !strings.HasPrefix(value, "=?") && !strings.HasSuffix(value, "?=") {
		return value
	}
	return DecodeHeader(value)
}
