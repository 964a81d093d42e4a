package unsplash

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.unsplash.com"

// Client searches Unsplash for a representative photo. "Not found" is
// an empty URL, never an error; only transport/API failures error.
type Client struct {
	http      *resty.Client
	accessKey string
}

// NewClient creates a new Unsplash client. An empty access key is
// allowed: searches then short-circuit to "no image".
func NewClient(accessKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(10 * time.Second),
		accessKey: accessKey,
	}
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// SearchImage returns the URL of the first landscape photo matching
// the query, or an empty string when nothing matches.
func (c *Client) SearchImage(ctx context.Context, query string) (string, error) {
	if c.accessKey == "" {
		return "", nil
	}

	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":       query,
			"per_page":    "1",
			"orientation": "landscape",
		}).
		SetHeader("Authorization", "Client-ID "+c.accessKey).
		SetResult(&result).
		Get("/search/photos")
	if err != nil {
		return "", fmt.Errorf("unsplash request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("unsplash API error: %s", resp.Status())
	}

	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].URLs.Regular, nil
}
