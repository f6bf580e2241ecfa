package ingestion

import (
	"bytes"
	"io"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFText reads the PDF text layer. When the library yields
// nothing it tries the pdftotext CLI, which copes better with some
// encodings.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return "", err
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		if out, err := exec.Command("pdftotext", "-layout", path, "-").Output(); err == nil {
			return string(out), nil
		}
	}
	return text, nil
}
