// Package backend talks to the Music Clouds user service: authentication
// and the user-management endpoints used by the admin screens.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/musicclouds/web/internal/ports"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

const (
	loginPath    = "/api/v1/users/auth/login"
	registerPath = "/api/v1/users/auth/register"
	usersPath    = "/api/v1/users"

	// DefaultTokenPath locates the bearer token in login and register responses.
	DefaultTokenPath = "accessToken"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

var (
	_ ports.AuthAPI  = (*Client)(nil)
	_ ports.UsersAPI = (*Client)(nil)
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// TokenPath is a JMESPath expression evaluated against the login response.
	TokenPath  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokenPath string
	logger    *slog.Logger
}

// NewClient validates opts and builds a client with a public-suffix aware cookie jar.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("backend base URL is required")
	}
	base, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL must be http or https, got %q", base.Scheme)
	}

	expr := strings.TrimSpace(opts.TokenPath)
	if expr == "" {
		expr = DefaultTokenPath
	}
	if _, err = jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("compile token path %q: %w", expr, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		http:      httpClient,
		tokenPath: expr,
		logger:    logger.With("component", "backend"),
	}, nil
}

// Login posts the sign-in form and returns the issued bearer token.
// A 401 answer yields *ports.AuthRejectedError; anything else that fails yields *ports.NetworkError.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (string, error) {
	return c.issueToken(ctx, "login", loginPath, in)
}

// Register creates an account and returns its bearer token.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	return c.issueToken(ctx, "register", registerPath, in)
}

func (c *Client) issueToken(ctx context.Context, op, path string, body any) (string, error) {
	var payload any
	if err := c.do(ctx, c.http, request{op: op, method: http.MethodPost, path: path, body: body, out: &payload}); err != nil {
		return "", err
	}

	found, err := jmespath.Search(c.tokenPath, payload)
	if err != nil {
		return "", &ports.NetworkError{Op: op, Err: fmt.Errorf("extract token: %w", err)}
	}
	token, ok := found.(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", &ports.NetworkError{Op: op, Err: errors.New("response carries no access token")}
	}
	return token, nil
}

// ListUsers returns all accounts.
func (c *Client) ListUsers(ctx context.Context, token string) ([]ports.Account, error) {
	var accounts []ports.Account
	err := c.do(ctx, c.bearer(ctx, token), request{op: "list users", method: http.MethodGet, path: usersPath, out: &accounts})
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].Password = ""
	}
	return accounts, nil
}

// CreateUser adds an account.
func (c *Client) CreateUser(ctx context.Context, token string, acct ports.Account) error {
	acct.ID = 0
	return c.do(ctx, c.bearer(ctx, token), request{op: "create user", method: http.MethodPost, path: usersPath, body: acct})
}

// UpdateUser replaces the editable fields of account id.
func (c *Client) UpdateUser(ctx context.Context, token string, id int, acct ports.Account) error {
	acct.ID = 0
	return c.do(ctx, c.bearer(ctx, token), request{
		op:     "update user",
		method: http.MethodPut,
		path:   usersPath + "/" + strconv.Itoa(id),
		body:   acct,
	})
}

// DeleteUser removes account id.
func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	return c.do(ctx, c.bearer(ctx, token), request{
		op:     "delete user",
		method: http.MethodDelete,
		path:   usersPath + "/" + strconv.Itoa(id),
	})
}

// bearer wraps the base client so every request carries token.
func (c *Client) bearer(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.http
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

type request struct {
	op     string
	method string
	path   string
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, hc *http.Client, r request) error {
	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return &ports.NetworkError{Op: r.op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.base.JoinPath(r.path).String(), body)
	if err != nil {
		return &ports.NetworkError{Op: r.op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed", "op", r.op, "error", err)
		return &ports.NetworkError{Op: r.op, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.DebugContext(ctx, "close response body", "op", r.op, "error", closeErr)
		}
	}()

	c.logger.DebugContext(ctx, "backend request",
		"op", r.op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return &ports.AuthRejectedError{Op: r.op}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var cause error
		if msg := strings.TrimSpace(string(detail)); msg != "" {
			cause = errors.New(msg)
		}
		return &ports.NetworkError{Op: r.op, Status: resp.StatusCode, Err: cause}
	}

	if r.out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return &ports.NetworkError{Op: r.op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
