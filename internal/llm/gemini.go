package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const geminiDefaultURL = "https://generativelanguage.googleapis.com"

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Gemini calls the generateContent endpoint of the Generative Language
// API. The key travels as a query parameter, per Google's convention.
type Gemini struct {
	BaseURL string
	Client  *http.Client
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	baseURL := g.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultURL
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	})
	if err != nil {
		return "", &ProviderError{Provider: g.Name(), Err: err}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", baseURL, req.Model, req.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Provider: g.Name(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: g.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", &ProviderError{Provider: g.Name(), Err: fmt.Errorf("status %d: %s", resp.StatusCode, raw)}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ProviderError{Provider: g.Name(), Err: fmt.Errorf("decoding response: %w", err)}
	}
	if out.Error != nil {
		return "", &ProviderError{Provider: g.Name(), Err: errors.New(out.Error.Message)}
	}
	if len(out.Candidates) == 0 {
		return "", &ProviderError{Provider: g.Name(), Err: errors.New("no candidates in response")}
	}

	var parts []string
	for _, p := range out.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return "", &ProviderError{Provider: g.Name(), Err: errors.New("no text parts in candidate")}
	}
	return strings.Join(parts, " "), nil
}
