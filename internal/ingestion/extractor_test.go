package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedExt(t *testing.T) {
	supported := []string{"doc.pdf", "notes.txt", "README.md", "scan.png", "photo.jpg", "photo.JPEG"}
	for _, name := range supported {
		assert.True(t, SupportedExt(name), name)
	}

	unsupported := []string{"sheet.xlsx", "doc.docx", "archive.zip", "noext", "script.sh"}
	for _, name := range unsupported {
		assert.False(t, SupportedExt(name), name)
	}
}

func TestExtractTextPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text body"), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "plain text body", text)
}

func TestExtractTextMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nbody"), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Contains(t, text, "# Title")
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := ExtractText("report.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
