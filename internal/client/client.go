// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package client is a Go client for the GradeMe auth endpoints. It keeps
// the session cookie in a cookie jar, so a Client is one browser session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/samber/oops"

	"github.com/dumindu-Test/GradeMe/internal/auth"
)

// DefaultPrefix is the path the auth endpoints are mounted under.
const DefaultPrefix = "/api/auth"

// NetworkErrorMessage is what a UI shows when a call never got an answer.
const NetworkErrorMessage = "Network error occurred"

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Message returns the text a UI should show for err: the server's message
// for an APIError and a generic network message for anything else.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return NetworkErrorMessage
}

// SignUpRequest is the sign-up payload.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
	FullName string `json:"fullName,omitempty"`
}

// Client talks to one GradeMe server.
type Client struct {
	base   *url.URL
	prefix string
	http   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc for requests. A cookie jar is added if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithPrefix mounts the endpoints under prefix instead of DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = "/" + strings.Trim(prefix, "/")
	}
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, oops.Code("CLIENT_INVALID_URL").
			With("base_url", baseURL).
			Errorf("base URL must be absolute")
	}
	c := &Client{
		base:   base,
		prefix: DefaultPrefix,
		http:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, oops.Code("CLIENT_INIT_FAILED").Wrap(err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

type userEnvelope struct {
	User *auth.PublicUser `json:"user"`
}

// SignUp creates an account. It does not sign in.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*auth.PublicUser, error) {
	var out userEnvelope
	if err := c.call(ctx, http.MethodPost, "/signup", req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// SignIn signs in; the session cookie is kept for later calls.
func (c *Client) SignIn(ctx context.Context, email, password string) (*auth.PublicUser, error) {
	var out userEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/signin", body, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// SignOut ends the session.
func (c *Client) SignOut(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/signout", nil, nil)
}

// Me returns the signed-in user, or nil when there is no session.
func (c *Client) Me(ctx context.Context) (*auth.PublicUser, error) {
	var out userEnvelope
	if err := c.call(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return oops.Code("CLIENT_ENCODE_FAILED").Wrap(err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.base.JoinPath(c.prefix, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return oops.Code("CLIENT_REQUEST_FAILED").Wrap(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return oops.Code("CLIENT_TRANSPORT_FAILED").
			With("method", method).
			With("path", endpoint.Path).
			Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return oops.Code("CLIENT_DECODE_FAILED").With("path", endpoint.Path).Wrap(err)
	}
	return nil
}
