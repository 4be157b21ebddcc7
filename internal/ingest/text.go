package ingest

import (
	"io"
	"strings"
)

// TextExtractor handles plain text files. Content is kept byte for byte
// apart from replacing invalid UTF-8.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
