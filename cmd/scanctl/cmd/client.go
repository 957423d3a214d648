package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Event mirrors the server's scan event wire format. Payload stays raw so
// each output format can render it natively.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Finding is the payload of a vulnerability event.
type Finding struct {
	File     string `json:"file"`
	Analysis string `json:"analysis"`
}

// Client streams scan events from the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	verbose    bool
}

// NewClient creates a new scan API client. Scans are unbounded in
// duration, so the HTTP client carries no timeout; cancellation comes
// from the context.
func NewClient(baseURL string, verbose bool) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		verbose:    verbose,
	}
}

type scanRequest struct {
	RepositoryURL string `json:"repository_url"`
	AccessToken   string `json:"access_token,omitempty"`
}

// Stream submits a scan and invokes fn for each event until the stream
// ends. The access token travels only in the request body.
func (c *Client) Stream(ctx context.Context, repoURL, token string, fn func(Event) error) error {
	body, err := json.Marshal(scanRequest{RepositoryURL: repoURL, AccessToken: token})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/api/v1/scans"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	if c.verbose {
		fmt.Printf(">>> POST %s\n", url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			return fmt.Errorf("parse event: %w", err)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}

	return nil
}

// parseAPIError converts a non-200 response into an error.
func parseAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Code)
	}

	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
