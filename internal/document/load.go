package document

import (
	"fmt"
	"os"

	"github.com/docrun/docrun/internal/charset"
)

// Load reads a document and detects its encoding and newline style,
// both reused for every region staged from it.
func Load(path string, kind Markup) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	enc, err := charset.Detect(path, raw)
	if err != nil {
		return nil, err
	}
	text, err := enc.Decode(raw)
	if err != nil {
		return nil, charset.ErrUndecodable{Path: path}
	}

	return &Source{
		Path:     path,
		Raw:      raw,
		Text:     text,
		Encoding: enc,
		Newline:  charset.Newline(text),
		Markup:   kind,
	}, nil
}
