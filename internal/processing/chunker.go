package processing

import (
	"regexp"
	"strings"
)

const (
	// ChunkSize and ChunkOverlap match what the editor's upload dialog
	// promises: ~1000 character chunks with 200 characters of overlap.
	ChunkSize    = 1000
	ChunkOverlap = 200
)

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// ChunkText splits extracted document text into paragraph chunks,
// further splitting long paragraphs with overlap so no chunk exceeds
// ChunkSize.
func ChunkText(text string) []string {
	var out []string
	for _, p := range paragraphSplit.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, splitLong(p, ChunkSize, ChunkOverlap)...)
	}
	return out
}

func splitLong(s string, max, overlap int) []string {
	if len(s) <= max {
		return []string{s}
	}
	var res []string
	for i := 0; i < len(s); i += max - overlap {
		end := i + max
		if end > len(s) {
			end = len(s)
		}
		res = append(res, strings.TrimSpace(s[i:end]))
		if end == len(s) {
			break
		}
	}
	return res
}
