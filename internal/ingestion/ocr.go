package ingestion

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// extractWithOCR runs Tesseract over an image, or over each page of a
// scanned PDF after converting pages to PNG with pdftoppm (poppler).
func extractWithOCR(path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return ocrImage(path)
	}

	tmpPrefix := filepath.Join(os.TempDir(), "studio_pdfimg")
	if err := exec.Command("pdftoppm", "-png", path, tmpPrefix).Run(); err != nil {
		return "", fmt.Errorf("pdftoppm convert failed: %w", err)
	}
	pages, err := filepath.Glob(tmpPrefix + "-*.png")
	if err != nil {
		return "", err
	}
	defer func() {
		for _, p := range pages {
			os.Remove(p)
		}
	}()

	var combined strings.Builder
	for _, p := range pages {
		text, err := ocrImage(p)
		if err != nil {
			continue
		}
		combined.WriteString(text)
		combined.WriteString("\n")
	}
	return strings.TrimSpace(combined.String()), nil
}

func ocrImage(imgPath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(imgPath); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
