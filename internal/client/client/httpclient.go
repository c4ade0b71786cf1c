package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/google/uuid"
)

const (
	loginPath    = "/api/users/login"
	registerPath = "/api/users/register"
	healthPath   = "/api/health"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	token   func() string
}

type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.http = c }
}

// WithBearer makes every request carry "Authorization: Bearer <token()>"
// whenever token returns a non-empty value.
func WithBearer(token func() string) HTTPOption {
	return func(h *HTTPClient) { h.token = token }
}

func NewHTTPClient(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) Login(ctx context.Context, creds models.LoginCredentials) (models.AuthResponse, error) {
	return c.postAuth(ctx, loginPath, creds)
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error) {
	return c.postAuth(ctx, registerPath, reg)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return statusError(resp)
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) postAuth(ctx context.Context, path string, payload any) (models.AuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return models.AuthResponse{}, err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return models.AuthResponse{}, err
	}

	var out models.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.AuthResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !out.Complete() {
		return models.AuthResponse{}, fmt.Errorf("%w: missing email or token", ErrMalformedResponse)
	}
	return out, nil
}

// do sends the request; the returned response body must be closed by the
// caller. The per-call timeout covers reading the body as well.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var cancel context.CancelFunc = func() {}
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		cancel()
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func statusError(resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code <= 299:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case code >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return fmt.Errorf("%w: %s", ErrRejected, resp.Status)
	}
}
