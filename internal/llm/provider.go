// Package llm wraps each supported language model vendor behind one
// uniform adapter interface. Dispatch is a lookup table keyed on the
// provider name an llm node carries; adding a vendor means adding one
// adapter and one Register call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Request carries everything one generation call needs. Credentials are
// per-request because every workflow node brings its own key.
type Request struct {
	Prompt      string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// Provider is a single vendor adapter. Generate performs exactly one
// remote attempt; no retries, no fallback to another vendor.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// ProviderError wraps a failed generation call, keeping the vendor name
// for the user-facing error message.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("Error calling %s API: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTimeout reports whether err was caused by the per-call deadline
// rather than a vendor-side failure.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// Registry is the closed set of adapters the engine dispatches over.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces an adapter under its own name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// DefaultRegistry wires the adapters for every provider the editor
// offers. ollamaURL points generation at a local Ollama instance.
func DefaultRegistry(ollamaURL string, timeout time.Duration) *Registry {
	client := &http.Client{Timeout: timeout}
	r := NewRegistry()
	r.Register(&OpenAI{})
	r.Register(&Anthropic{Client: client})
	r.Register(&Gemini{Client: client})
	r.Register(&Ollama{BaseURL: ollamaURL, Client: client})
	return r
}
