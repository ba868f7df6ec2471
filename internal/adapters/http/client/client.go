// Package client is the typed HTTP client for the NODO REST API.
//
// Every operation is one best-effort request: no retry, no timeout of its
// own (callers bound calls through the context), no structured error codes.
// Failures surface as *RequestError carrying the server's raw text.
package client

import (
	"net/http"
	"strings"

	"github.com/okian/nodo/internal/session"
	"github.com/okian/nodo/pkg/logger"
)

// Client calls the NODO API on behalf of one session.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	logger  logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for baseURL. The session supplies the bearer token on
// every call; a nil session means every call is anonymous.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		session: sess,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the session the client reads its token from.
func (c *Client) Session() *session.Session { return c.session }
