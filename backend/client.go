package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the asset-lending backend.
const DefaultBaseURL = "https://manpro-mansetdig.vercel.app"

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4096
)

// RefreshStyle selects how the refresh credential is sent.
type RefreshStyle string

const (
	// RefreshInPath sends POST /auth/refresh/{refreshToken}.
	RefreshInPath RefreshStyle = "path"
	// RefreshInBody sends POST /auth/refresh with {"refresh_token": ...}.
	RefreshInBody RefreshStyle = "body"
)

// Doer is the minimum HTTP client contract. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one call per completed request. status is 0 when the
// request never produced a response.
type Observer func(op string, status int, elapsed time.Duration)

// Config configures a Client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RefreshStyle RefreshStyle
	HTTPClient   Doer
	Observer     Observer
}

// Client talks to the backend endpoints. It holds no session state; every
// authenticated call takes the bearer credential explicitly.
type Client struct {
	baseURL      string
	timeout      time.Duration
	refreshStyle RefreshStyle
	http         Doer
	observe      Observer
}

// New builds a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	style := cfg.RefreshStyle
	if style != RefreshInBody {
		style = RefreshInPath
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:      baseURL,
		timeout:      timeout,
		refreshStyle: style,
		http:         httpClient,
		observe:      cfg.Observer,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login submits form-encoded credentials to POST /auth/login.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
	var pair TokenPair
	if err := c.do(ctx, req, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response has no access_token", ErrMalformedBody)
	}
	return &pair, nil
}

// CheckToken validates a credential with GET /auth/token/{token}. A nil
// error means the backend accepted it.
func (c *Client) CheckToken(ctx context.Context, token string) error {
	return c.do(ctx, request{
		op:     "check_token",
		method: http.MethodGet,
		path:   "/auth/token/" + url.PathEscape(token),
	}, nil)
}

// Refresh exchanges a refresh credential for a new token pair using the
// configured RefreshStyle.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	req := request{op: "refresh", method: http.MethodPost}
	switch c.refreshStyle {
	case RefreshInBody:
		raw, err := json.Marshal(refreshBody{RefreshToken: refreshToken})
		if err != nil {
			return nil, err
		}
		req.path = "/auth/refresh"
		req.body = bytes.NewReader(raw)
		req.contentType = "application/json"
	default:
		req.path = "/auth/refresh/" + url.PathEscape(refreshToken)
	}

	var pair TokenPair
	if err := c.do(ctx, req, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: refresh response has no access_token", ErrMalformedBody)
	}
	return &pair, nil
}

// GetAccount reads the account behind token via GET /user/get_account.
func (c *Client) GetAccount(ctx context.Context, token string) (*Account, error) {
	var acct Account
	err := c.do(ctx, request{
		op:     "get_account",
		method: http.MethodGet,
		path:   "/user/get_account",
		bearer: token,
	}, &acct)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetUser reads a named account via GET /user/{username}.
func (c *Client) GetUser(ctx context.Context, token, username string) (*Account, error) {
	var acct Account
	err := c.do(ctx, request{
		op:     "get_user",
		method: http.MethodGet,
		path:   "/user/" + url.PathEscape(username),
		bearer: token,
	}, &acct)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// ListProducts reads the first catalog page visible to role.
func (c *Client) ListProducts(ctx context.Context, token, role string) (*ProductList, error) {
	q := url.Values{}
	q.Set("index", "0")
	q.Set("role", role)

	var list ProductList
	err := c.do(ctx, request{
		op:     "list_products",
		method: http.MethodGet,
		path:   "/product/list",
		query:  q,
		bearer: token,
	}, &list)
	if err != nil {
		return nil, err
	}
	if list.Products == nil {
		return nil, fmt.Errorf("%w: product_list missing", ErrMalformedBody)
	}
	return &list, nil
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	bearer      string
}

// do sends req and decodes a 2xx body into dst when dst is non-nil.
func (c *Client) do(ctx context.Context, r request, dst any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("backend %s: build request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	start := time.Now()
	status := 0
	defer func() {
		if c.observe != nil {
			c.observe(r.op, status, time.Since(start))
		}
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error carries the request URL, which may hold a credential.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("%w: %s: %v", ErrTransport, r.op, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: r.op, Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedBody, r.op, err)
	}
	return nil
}

func readMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var eb errorBody
	if json.Unmarshal(raw, &eb) != nil {
		return ""
	}
	return strings.TrimSpace(eb.Message)
}

type requestIDKey struct{}

// WithRequestID attaches id to ctx so every request made under it carries
// the same X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id attached by WithRequestID, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

func requestID(ctx context.Context) string {
	if id, ok := RequestIDFrom(ctx); ok {
		return id
	}
	return uuid.NewString()
}
