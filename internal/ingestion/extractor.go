// Package ingestion turns uploaded files into plain text for chunking
// and embedding. PDFs use their text layer when present and fall back
// to OCR for scanned pages; images always go through OCR.
package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for file extensions the upload
// endpoint does not accept.
var ErrUnsupportedType = errors.New("unsupported file type")

// SupportedExt reports whether uploads of this extension are accepted.
func SupportedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".md", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// ExtractText detects the file type from its extension and returns the
// document's text.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case ".pdf":
		text, err := extractPDFText(path)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		// No text layer; treat as scanned.
		return extractWithOCR(path)
	case ".png", ".jpg", ".jpeg":
		return extractWithOCR(path)
	default:
		return "", ErrUnsupportedType
	}
}
