package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const (
	userAgent   = "spoilershield/1.0"
	maxBodySize = 5 * 1024 * 1024
)

// fetchBody performs one GET and returns the response body, translating
// transport and status failures into the typed taxonomy.
func fetchBody(ctx context.Context, client HTTPClient, sourceID, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewError(sourceID, Transient, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewError(sourceID, Transient, fmt.Errorf("http get: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, NewError(sourceID, kindFromStatus(resp.StatusCode),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, NewError(sourceID, Transient, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}
