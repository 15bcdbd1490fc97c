package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Provider failures that map to well-known HTTP statuses get stable messages
// so operators can tell a bad key from an exhausted quota at a glance.
func classifyStatus(provider string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: invalid API key", provider)
	case http.StatusPaymentRequired, http.StatusForbidden:
		return fmt.Errorf("%s: API quota exceeded", provider)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: rate limited", provider)
	default:
		return fmt.Errorf("%s: HTTP %d: %s", provider, status, bodyExcerpt(body))
	}
}

func bodyExcerpt(body []byte) string {
	const maxExcerpt = 200
	excerpt := bytes.TrimSpace(body)
	if len(excerpt) > maxExcerpt {
		excerpt = excerpt[:maxExcerpt]
	}
	if len(excerpt) == 0 {
		return "(empty body)"
	}
	return string(excerpt)
}

// getJSON issues a GET and decodes a 200 response into out. Non-200 statuses
// are classified into provider errors.
func getJSON(ctx context.Context, client *http.Client, provider, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")
	return doJSON(client, provider, req, out)
}

// postJSON issues a POST with a JSON body and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, provider, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return doJSON(client, provider, req, out)
}

func doJSON(client *http.Client, provider string, req *http.Request, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return classifyStatus(provider, resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}
	return nil
}
