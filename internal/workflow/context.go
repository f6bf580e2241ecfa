package workflow

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"
)

// maxSnippetLen caps a single retrieved chunk inside the prompt.
const maxSnippetLen = 2000

// gatherContext runs a similarity query per knowledge base node and
// concatenates the results in node-id order (Resolve already sorted
// them). A failing or empty partition contributes zero snippets; the
// failure is recorded as a warning, never an error.
func (e *Engine) gatherContext(ctx context.Context, workflowID string, kbNodes []Node, query string) (snippets, warnings []string) {
	snippets = []string{}
	for _, node := range kbNodes {
		results, err := e.retriever.QuerySimilar(ctx, workflowID, query, e.topK)
		if err != nil {
			log.Printf("Retrieval failed for knowledge base %s: %v", node.ID, err)
			warnings = append(warnings, fmt.Sprintf("knowledge base %s: retrieval unavailable", node.ID))
			continue
		}
		for _, s := range results {
			snippets = append(snippets, formatSnippet(s))
		}
	}
	return snippets, warnings
}

func formatSnippet(s Snippet) string {
	text := s.Text
	if len(text) > maxSnippetLen {
		// Back off to a rune boundary so the cut never leaves a partial
		// multi-byte sequence in the prompt.
		cut := maxSnippetLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	if s.Source == "" {
		return text
	}
	return fmt.Sprintf("File: %s\n%s", s.Source, text)
}
