package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/contractkit/playbookd/internal/document"
)

// Parser converts raw document bytes into an extracted Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// UnsupportedFormatError is returned when a file extension has no parser
// or is not in the configured allow-list.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Ext)
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".xlsx":
		return &XLSXParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}
}

// Allowed checks a filename's extension against the configured allow-list.
// Entries are extensions without the leading dot, e.g. "pdf".
func Allowed(filename string, allowlist []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, a := range allowlist {
		if ext == strings.ToLower(strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}
