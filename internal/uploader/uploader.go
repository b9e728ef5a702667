// Package uploader implements the best-effort archive upload of the
// collection index. Failure is logged by the caller, never fatal.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vbtn/compliance-audit/internal/config"
)

const requestTimeout = 30 * time.Second

// Uploader posts a generated file to the archive endpoint.
type Uploader struct {
	endpoint config.Endpoint
	client   *http.Client
}

// New returns an Uploader for the archive endpoint.
func New(endpoint config.Endpoint) Uploader {
	return Uploader{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether the archive endpoint is usable at all.
func (u Uploader) Configured() bool {
	return u.endpoint.Configured()
}

// Upload posts the file at path as a multipart form with bearer authorization.
// Exactly one attempt is made.
func (u Uploader) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %v", path, err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint.URL, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u.endpoint.Key)

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send upload: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
