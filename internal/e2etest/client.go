package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/justinas/nosurf"
	"github.com/myrjola/coldcase/internal/errors"
)

// CSRFTokenPath serves the CSRF token that unsafe requests must echo in the [nosurf.HeaderName] header.
const CSRFTokenPath = "/api/csrf-token"

type Client struct {
	client    *http.Client
	url       string
	csrfToken string
}

// NewClient creates a session-aware JSON client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar},
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.url+urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetJSON fetches a URL and decodes a successful JSON response into out. The status code is returned also when the
// request was not successful.
func (c *Client) GetJSON(ctx context.Context, urlPath string, out any) (int, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return 0, errors.Wrap(err, "client get", slog.String("path", urlPath))
	}
	return resp.StatusCode, decodeResponse(resp, out)
}

// Post sends body to the server with the CSRF token of the session.
func (c *Client) Post(ctx context.Context, urlPath, contentType string, body io.Reader) (*http.Response, error) {
	if c.csrfToken == "" {
		if err := c.fetchCSRFToken(ctx); err != nil {
			return nil, errors.Wrap(err, "fetch CSRF token")
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(nosurf.HeaderName, c.csrfToken)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// PostJSON posts in as JSON, or an empty body when in is nil, and decodes a successful JSON response into out.
func (c *Client) PostJSON(ctx context.Context, urlPath string, in, out any) (int, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, "marshal request body")
		}
		body = bytes.NewReader(encoded)
	}
	resp, err := c.Post(ctx, urlPath, "application/json", body)
	if err != nil {
		return 0, errors.Wrap(err, "client post", slog.String("path", urlPath))
	}
	return resp.StatusCode, decodeResponse(resp, out)
}

func (c *Client) fetchCSRFToken(ctx context.Context) error {
	var token struct {
		Token string `json:"token"`
	}
	status, err := c.GetJSON(ctx, CSRFTokenPath, &token)
	if err != nil {
		return err
	}
	if status != http.StatusOK || token.Token == "" {
		return errors.New("no CSRF token", slog.Int("status", status))
	}
	c.csrfToken = token.Token
	return nil
}

func decodeResponse(resp *http.Response, out any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	if out == nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body", slog.Int("status", resp.StatusCode))
	}
	return nil
}
