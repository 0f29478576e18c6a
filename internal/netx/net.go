// Package netx holds small HTTP helpers.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxFetchSize caps the body Fetch reads.
const MaxFetchSize = 10 << 20

// Fetch downloads url with client and returns the body together with its
// Content-Type. Any status other than 200 is an error.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("fetch failed: %s; body: %s", resp.Status, string(b))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(body) > MaxFetchSize {
		return nil, "", fmt.Errorf("fetch failed: body exceeds %d bytes", MaxFetchSize)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
