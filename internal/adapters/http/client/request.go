package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/okian/nodo/pkg/logger"
	"github.com/okian/nodo/pkg/metrics"
)

// Header names set on every call.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerRequestID   = "X-Request-ID"
	contentTypeJSON   = "application/json"
)

// Response is a successful (2xx) reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the server declared a JSON body.
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), contentTypeJSON)
}

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body) }

// Decode unmarshals a JSON body into v. Non-JSON bodies leave v untouched.
func (r *Response) Decode(v any) error {
	if v == nil || !r.IsJSON() || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &RequestError{Status: r.StatusCode, Message: fmt.Sprintf("invalid JSON response: %v", err), Err: err}
	}
	return nil
}

// Do sends one JSON request. body is marshalled when non-nil. The path may
// carry a query string. op names the call in logs and metrics.
func (c *Client) Do(ctx context.Context, op, method, path string, body any) (*Response, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Message: fmt.Sprintf("encode request: %v", err), Err: err}
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, newTransportError(err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAccept, contentTypeJSON)

	return c.send(ctx, op, req)
}

// do is Do followed by Decode into out.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (*Response, error) {
	resp, err := c.Do(ctx, op, method, path, body)
	if err != nil {
		return nil, err
	}
	if err := resp.Decode(out); err != nil {
		return resp, err
	}
	return resp, nil
}

// send attaches the ambient headers, performs the call and normalizes the
// outcome.
func (c *Client) send(ctx context.Context, op string, req *http.Request) (*Response, error) {
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	c.authorize(ctx, req)

	start := time.Now()
	res, err := c.http.Do(req)
	durationMs := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		metrics.RecordAPIRequest(op, req.Method, "0", durationMs)
		metrics.RecordAPIError(op, errorType(0))
		c.logger.Debug(ctx, "api call failed",
			logger.String("op", op),
			logger.String("request_id", requestID),
			logger.Error(err))
		return nil, newTransportError(err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	status := strconv.Itoa(res.StatusCode)
	metrics.RecordAPIRequest(op, req.Method, status, durationMs)
	if err != nil {
		metrics.RecordAPIError(op, errorType(0))
		return nil, newTransportError(err)
	}

	c.logger.Debug(ctx, "api call",
		logger.String("op", op),
		logger.String("method", req.Method),
		logger.String("path", req.URL.RequestURI()),
		logger.Int("status", res.StatusCode),
		logger.String("request_id", requestID),
		logger.Float64("duration_ms", durationMs))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordAPIError(op, errorType(res.StatusCode))
		return nil, newStatusError(res.StatusCode, body)
	}

	return &Response{
		StatusCode:  res.StatusCode,
		ContentType: res.Header.Get(headerContentType),
		Body:        body,
	}, nil
}

// authorize sets the bearer header iff the session holds a token.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.session == nil {
		return
	}
	token := c.session.Token(ctx)
	if token == "" {
		return
	}
	(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)
}

// pathf builds a path with escaped segments, e.g. pathf("/proposals/%s/status", id).
func pathf(format string, segments ...string) string {
	args := make([]any, len(segments))
	for i, s := range segments {
		args[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, args...)
}
