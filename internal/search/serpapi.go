// Package search queries the SERP API for web results used to augment
// the generation prompt. Results are cached in Redis because the same
// chat query is frequently retried while a user edits their workflow.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	serpDefaultURL = "https://serpapi.com"
	maxResults     = 5
	cacheTTL       = 30 * time.Minute
)

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

// Client talks to the SERP API. Redis is optional; with a nil client
// every call goes to the network.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Cache      *redis.Client
}

func NewClient(cache *redis.Client) *Client {
	return &Client{
		BaseURL:    serpDefaultURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Cache:      cache,
	}
}

// Search returns up to five formatted organic results for the query.
// The caller's key is used; the service itself holds no search credential.
func (c *Client) Search(ctx context.Context, query, apiKey string) ([]string, error) {
	if cached, ok := c.fromCache(ctx, query); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", apiKey)
	params.Set("num", fmt.Sprint(maxResults))
	params.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search failed with status %d", resp.StatusCode)
	}

	var data serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]string, 0, maxResults)
	for i, r := range data.OrganicResults {
		if i >= maxResults {
			break
		}
		results = append(results, fmt.Sprintf("Title: %s\nSnippet: %s\nURL: %s", r.Title, r.Snippet, r.Link))
	}

	c.toCache(ctx, query, results)
	return results, nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "serp:" + hex.EncodeToString(sum[:])
}

func (c *Client) fromCache(ctx context.Context, query string) ([]string, bool) {
	if c.Cache == nil {
		return nil, false
	}
	data, err := c.Cache.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		return nil, false
	}
	var results []string
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, false
	}
	return results, true
}

func (c *Client) toCache(ctx context.Context, query string, results []string) {
	if c.Cache == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.Cache.Set(ctx, cacheKey(query), data, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache search results: %v", err)
	}
}
