// Package api is the typed REST client for the POS backend. One method per
// endpoint; every call takes a context, attaches the Bearer token from the
// TokenSource, and maps non-2xx responses into apierror values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"barpos/internal/apierror"
)

// TokenSource supplies the current session token. An empty string means
// unauthenticated and no Authorization header is sent.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// errorEnvelope is the backend's canonical error body.
type errorEnvelope struct {
	Detail string `json:"detail"`
}

// do performs one request/response cycle. body and out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: create request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierror.Transport(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return apierror.New(resp.StatusCode, envelope.Detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
