// Package client talks to the employee directory REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"employee-directory/internal/models"
)

// ErrNotFound matches any RequestError with a 404 status.
var ErrNotFound = errors.New("client: not found")

// RequestError is returned for every failed call. StatusCode is 0 when the
// request never got a response.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return "client: request failed: " + e.Message
	}
	return fmt.Sprintf("client: %d: %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Client struct {
	base *url.URL
	http *http.Client
}

type options struct {
	http    *http.Client
	timeout time.Duration
}

type Option func(*options)

// WithHTTPClient uses a shallow copy of hc as the base client. hc itself is
// never modified. The copy gets a cookie jar if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.http = hc }
}

// WithTimeout overrides the request timeout regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New creates a client for the backend at baseURL, e.g. http://localhost:5000.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}

	o := options{http: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.http == nil {
		return nil, errors.New("client: nil http client")
	}

	hc := *o.http
	if o.timeout > 0 {
		hc.Timeout = o.timeout
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	return &Client{base: base, http: &hc}, nil
}

// ImageURL turns a stored relative image path into an absolute URL.
func (c *Client) ImageURL(rel string) string {
	if rel == "" {
		return ""
	}
	if u, err := url.Parse(rel); err == nil && u.IsAbs() {
		return rel
	}
	return c.base.ResolveReference(&url.URL{Path: "/" + strings.TrimLeft(rel, "/")}).String()
}

func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return models.User{}, err
	}
	var env struct {
		Data models.User `json:"data"`
	}
	err = c.do(ctx, http.MethodPost, c.endpoint("api", "auth", "login"), bytes.NewReader(body), "application/json", &env)
	return env.Data, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.endpoint("api", "auth", "logout"), nil, "", nil)
}

func (c *Client) List(ctx context.Context) ([]models.Employee, error) {
	var env struct {
		Data []models.Employee `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.employees(), nil, "", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Get(ctx context.Context, id string) (models.Employee, error) {
	var env struct {
		Data models.Employee `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, c.employees(id), nil, "", &env)
	return env.Data, err
}

// Create posts the payload as multipart. The server answers with the bare record.
func (c *Client) Create(ctx context.Context, p Payload) (models.Employee, error) {
	body, contentType, err := p.encode()
	if err != nil {
		return models.Employee{}, err
	}
	var emp models.Employee
	err = c.do(ctx, http.MethodPost, c.employees(), body, contentType, &emp)
	return emp, err
}

// Update sends only the fields present in the payload.
func (c *Client) Update(ctx context.Context, id string, p Payload) (models.Employee, error) {
	body, contentType, err := p.encode()
	if err != nil {
		return models.Employee{}, err
	}
	var env struct {
		Data models.Employee `json:"data"`
	}
	err = c.do(ctx, http.MethodPut, c.employees(id), body, contentType, &env)
	return env.Data, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.employees(id), nil, "", nil)
}

func (c *Client) ToggleStatus(ctx context.Context, id string) (models.Employee, error) {
	var env struct {
		Data models.Employee `json:"data"`
	}
	err := c.do(ctx, http.MethodPatch, c.employees(id, "status"), nil, "", &env)
	return env.Data, err
}

// Export downloads the XLSX workbook of all employees.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.do(ctx, http.MethodGet, c.employees("export"), nil, "", &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) employees(parts ...string) string {
	return c.endpoint(append([]string{"api", "employees"}, parts...)...)
}

func (c *Client) endpoint(parts ...string) string {
	return c.base.JoinPath(parts...).String()
}

// do sends the request and decodes a 2xx body into out. A *bytes.Buffer out
// receives the raw body.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &RequestError{Message: err.Error(), Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{StatusCode: resp.StatusCode, Message: "read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		_, err = dst.Write(raw)
		return err
	default:
		if err := json.Unmarshal(raw, dst); err != nil {
			return &RequestError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
		}
		return nil
	}
}

func errorMessage(status int, raw []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return http.StatusText(status)
}
