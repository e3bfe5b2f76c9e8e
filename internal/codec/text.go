package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// charsets maps the character-encoding names seen in schemas to decoders.
// ASCII and UTF-8 pass through untranslated; the single-byte codepages go
// through x/text.
var charsets = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.ISO8859_1,
	"ISO_8859_1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"CP1252":       charmap.Windows1252,
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

func passthroughCharset(name string) bool {
	switch name {
	case "", "ASCII", "US-ASCII", "UTF-8", "UTF8":
		return true
	}
	return false
}

// decodeText converts wire bytes to a string per the declared character
// encoding.
func decodeText(charset string, data []byte) (string, error) {
	if passthroughCharset(charset) {
		return string(data), nil
	}
	enc, ok := charsets[charset]
	if !ok {
		return "", fmt.Errorf("unsupported character encoding %q", charset)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return string(out), nil
}

// encodeText converts a string to wire bytes per the declared character
// encoding.
func encodeText(charset string, s string) ([]byte, error) {
	if passthroughCharset(charset) {
		return []byte(s), nil
	}
	enc, ok := charsets[charset]
	if !ok {
		return nil, fmt.Errorf("unsupported character encoding %q", charset)
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", charset, err)
	}
	return out, nil
}

// escapeJSON applies JSON string escaping without the surrounding quotes.
func escapeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == utf8.RuneError {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
