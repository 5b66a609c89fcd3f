// Package source implements the upstream feed adapters. Each adapter fetches
// raw items from one external API and normalizes them into candidate records;
// malformed upstream entries are skipped and counted, never fatal.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "genai-radar/1.0"

// Client wraps HTTP access shared by the adapters: JSON/text GET helpers with
// a bounded per-request timeout and optional GitHub auth headers.
type Client struct {
	http        *http.Client
	githubToken string
}

// NewClient builds the shared fetcher. A nil http.Client gets the given
// timeout applied.
func NewClient(httpClient *http.Client, timeout time.Duration, githubToken string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{http: httpClient, githubToken: githubToken}
}

// GetJSON fetches rawURL with optional query params and decodes the JSON body
// into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, github bool, v any) error {
	body, err := c.get(ctx, rawURL, params, github)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// GetText fetches rawURL and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	body, err := c.get(ctx, rawURL, nil, false)
	if err != nil {
		return "", err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rawURL, err)
	}
	return string(raw), nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values, github bool) (io.ReadCloser, error) {
	target := rawURL
	if len(params) > 0 {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid url %s: %w", rawURL, err)
		}
		q := parsed.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		parsed.RawQuery = q.Encode()
		target = parsed.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if github {
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if c.githubToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.githubToken)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}
