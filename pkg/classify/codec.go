package classify

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the text encoding a file was decoded from.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF8BOM
	UTF16LE
	UTF16BE
)

func (e Encoding) String() string {
	switch e {
	case UTF8BOM:
		return "utf-8-bom"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case UTF8BOM:
		return unicode.UTF8BOM
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return unicode.UTF8
	}
}

// Sniff returns the encoding announced by data's byte order mark, UTF8 when
// there is none.
func Sniff(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return UTF16BE
	}
	return UTF8
}

// Decode turns file bytes into text. Only UTF-8 (optionally with BOM) and
// UTF-16 with a BOM are accepted; anything else, including UTF-8 holding NUL
// bytes, fails with ErrDecodeFailure.
func Decode(data []byte) (string, Encoding, error) {
	enc := Sniff(data)

	if enc == UTF16LE || enc == UTF16BE {
		if len(data)%2 != 0 {
			return "", enc, errors.Newf(errors.ErrDecodeFailure, "odd byte count for %s", enc)
		}
		decoded, err := enc.codec().NewDecoder().Bytes(data)
		if err != nil {
			return "", enc, errors.Wrapf(err, errors.ErrDecodeFailure, "invalid %s", enc)
		}
		text := string(decoded)
		// The decoder substitutes U+FFFD for unpaired surrogates; that would
		// not round-trip.
		if strings.ContainsRune(text, utf8.RuneError) {
			return "", enc, errors.Newf(errors.ErrDecodeFailure, "invalid %s sequence", enc)
		}
		return text, enc, nil
	}

	body := data
	if enc == UTF8BOM {
		body = data[len(bomUTF8):]
	}
	if !utf8.Valid(body) {
		return "", enc, errors.New(errors.ErrDecodeFailure, "content is not valid UTF-8")
	}
	if bytes.IndexByte(body, 0) >= 0 {
		return "", enc, errors.New(errors.ErrDecodeFailure, "content contains NUL bytes")
	}
	return string(body), enc, nil
}

// Encode turns text back into bytes in the given encoding, restoring the
// byte order mark Decode removed.
func Encode(text string, enc Encoding) ([]byte, error) {
	if enc == UTF8 {
		return []byte(text), nil
	}
	out, err := enc.codec().NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "cannot encode as %s", enc)
	}
	return out, nil
}
