package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/pkg/metrics"
)

// Upload sends r as the "file" part of a multipart form. It skips the JSON
// content type and, on any failure, returns ErrUploadFailed without the
// server's detail.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*model.UploadResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	n, err := io.Copy(part, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	req.Header.Set(headerContentType, form.FormDataContentType())

	resp, err := c.send(ctx, "upload", req)
	if err != nil {
		return nil, ErrUploadFailed
	}
	metrics.RecordUploadBytes(n)

	// The upload endpoint always answers JSON, whatever it declares.
	var out model.UploadResult
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, ErrUploadFailed
	}
	return &out, nil
}
