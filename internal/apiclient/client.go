// Package apiclient wraps outbound requests to the nutrition backend. It
// injects the bearer credential and CSRF header, captures refreshed tokens
// from responses and normalizes error responses into the apperror taxonomy.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
	"github.com/Hassanein20/Senior-Project-dev/internal/session"
)

const (
	csrfHeader = "X-CSRF-Token"
	csrfCookie = "csrf_token"
	csrfPath   = "/auth/csrf"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Session *session.Session
	// OnAuthExpired fires once per expiry when the backend invalidates the
	// session. The UI uses it to route the user back to sign-in.
	OnAuthExpired func()
}

// Client issues JSON requests against the backend REST API.
type Client struct {
	log           *zap.Logger
	base          *url.URL
	http          *http.Client
	session       *session.Session
	onAuthExpired func()
}

// New builds a Client with a cookie jar so the backend's csrf_token cookie is
// tracked alongside the session's own cached copy.
func New(log *zap.Logger, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		log:           log,
		base:          base,
		http:          &http.Client{Jar: jar, Timeout: timeout},
		session:       opts.Session,
		onAuthExpired: opts.OnAuthExpired,
	}, nil
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, fallback string) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out, fallback)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, fallback string) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out, fallback)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, fallback string) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out, fallback)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, fallback string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil, fallback)
}

// Do performs one request. fallback is the user-facing message used when the
// server does not supply one of its own.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any, fallback string) error {
	if c.session.Authenticated() && c.session.Expired() {
		c.log.Warn("bearer credential expired before request", zap.String("path", path))
		c.expireSession()
		return &apperror.AuthError{Message: "Your session has expired. Please sign in again."}
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &apperror.TransportError{Message: fallback, Err: err}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), payload)
	if err != nil {
		return &apperror.TransportError{Message: fallback, Err: err}
	}
	c.decorate(ctx, req, path)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &apperror.TransportError{Message: fallback, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperror.TransportError{Status: resp.StatusCode, Message: fallback, Err: err}
	}

	// Server is authoritative for the CSRF token.
	if tok := resp.Header.Get(csrfHeader); tok != "" {
		c.session.CSRF().SetToken(tok)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.expireSession()
		return &apperror.AuthError{Message: messageOr(data, "Your session has expired. Please sign in again.")}
	case resp.StatusCode == http.StatusForbidden:
		c.session.CSRF().Clear()
		return &apperror.CsrfError{Message: "Session expired. Please try again.", Retryable: true}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &apperror.RateLimitError{Message: "Too many requests. Please slow down and try again."}
	case resp.StatusCode >= 300:
		return &apperror.TransportError{Status: resp.StatusCode, Message: messageOr(data, fallback)}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			c.log.Error("failed to decode response", zap.String("path", path), zap.Error(err))
			return &apperror.TransportError{Status: resp.StatusCode, Message: fallback, Err: err}
		}
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) decorate(ctx context.Context, req *http.Request, path string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bearer := c.session.Bearer(); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if !mutating(req.Method) || authExempt(path) {
		return
	}
	token := c.csrfToken()
	if token == "" {
		c.refreshCSRF(ctx)
		token = c.csrfToken()
	}
	if token != "" {
		req.Header.Set(csrfHeader, token)
	} else {
		c.log.Warn("no CSRF token available for request", zap.String("path", path))
	}
}

// csrfToken prefers the backend-set cookie over the session's cached copy.
func (c *Client) csrfToken() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == csrfCookie && ck.Value != "" {
			return ck.Value
		}
	}
	return c.session.CSRF().Token()
}

// refreshCSRF performs one synchronous token fetch. It never loops: a second
// miss simply leaves the request without a token and lets the server decide.
func (c *Client) refreshCSRF(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(csrfPath, nil), nil)
	if err != nil {
		return
	}
	if bearer := c.session.Bearer(); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("CSRF refresh failed", zap.Error(err))
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if tok := resp.Header.Get(csrfHeader); tok != "" {
		c.session.CSRF().SetToken(tok)
	}
}

// expireSession resets local auth state and fires the expiry hook. The hook
// runs only on the authenticated-to-expired transition so repeated 401s do
// not trigger repeated redirects.
func (c *Client) expireSession() {
	wasAuthenticated := c.session.Authenticated()
	c.session.Reset()
	if wasAuthenticated && c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func authExempt(path string) bool {
	return path == "/auth/login" || path == "/auth/register"
}

func messageOr(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fallback
}
