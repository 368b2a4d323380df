// Package charset detects a document's character encoding and newline
// style and converts between raw bytes and text. Detection happens once
// per document; every region staged from that document reuses the result.
package charset

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is a detected document encoding.
type Encoding struct {
	Name string
	enc  encoding.Encoding
	bom  []byte
}

// ErrUndecodable is returned when no supported encoding can decode the
// document's bytes.
type ErrUndecodable struct {
	Path string
}

func (e ErrUndecodable) Error() string {
	return fmt.Sprintf("could not determine encoding for %s", e.Path)
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Detect determines the encoding of raw document bytes. A byte order
// mark wins; otherwise the content must be valid UTF-8.
func Detect(path string, raw []byte) (Encoding, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return Encoding{Name: "utf-8-sig", enc: unicode.UTF8BOM, bom: bomUTF8}, nil
	case bytes.HasPrefix(raw, bomUTF16BE):
		return Encoding{
			Name: "utf-16-be",
			enc:  unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
			bom:  bomUTF16BE,
		}, nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return Encoding{
			Name: "utf-16-le",
			enc:  unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
			bom:  bomUTF16LE,
		}, nil
	}
	if !utf8.Valid(raw) {
		return Encoding{}, ErrUndecodable{Path: path}
	}
	return Encoding{Name: "utf-8", enc: unicode.UTF8}, nil
}

// Decode converts raw document bytes to text.
func (e Encoding) Decode(raw []byte) (string, error) {
	out, _, err := transform.Bytes(e.enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s content: %w", e.Name, err)
	}
	return string(out), nil
}

// Encode converts text back to bytes in the document's encoding.
func (e Encoding) Encode(text string) ([]byte, error) {
	out, _, err := transform.Bytes(e.enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", e.Name, err)
	}
	return out, nil
}

// Newline returns the newline style used by the decoded content: the
// first of "\r\n", "\n", "\r" found. Empty when no newline exists, in
// which case no newline translation is applied downstream.
func Newline(text string) string {
	for _, nl := range []string{"\r\n", "\n", "\r"} {
		if strings.Contains(text, nl) {
			return nl
		}
	}
	return ""
}
