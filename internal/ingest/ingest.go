// Package ingest turns uploaded files into the plain text a document is
// highlighted over.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Extractor converts raw file bytes into plain text.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// Options tunes individual extractors.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Text extracts the plain text of data, choosing the extractor by filename.
func Text(data []byte, filename string, opts Options) (string, error) {
	ex, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	text, err := ex.Extract(bytes.NewReader(data), filename)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	return text, nil
}

// blockWriter joins non-empty blocks with a blank line.
type blockWriter struct {
	buf strings.Builder
}

func (w *blockWriter) add(block string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	if w.buf.Len() > 0 {
		w.buf.WriteString("\n\n")
	}
	w.buf.WriteString(block)
}

func (w *blockWriter) String() string { return w.buf.String() }
