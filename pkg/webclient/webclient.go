// Package webclient is the shared HTTP connector for the off-chain services:
// JSON round trips, file downloads and uniform error mapping. Every request
// carries a generated request ID for cross-service correlation.
package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

const requestIDHeader = "X-Request-ID"

// Client wraps an http.Client with JSON helpers and error mapping.
type Client struct {
	http *http.Client
	log  *logging.ColoredLogger
}

// New creates a connector with the given request timeout.
func New(timeout time.Duration, log *logging.ColoredLogger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// GetJSON performs a GET and decodes the JSON response into out. A nil out
// discards the body.
func (c *Client) GetJSON(ctx context.Context, endpoint string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

// PostJSON performs a POST with a JSON body and decodes the JSON response
// into out.
func (c *Client) PostJSON(ctx context.Context, endpoint string, in, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, in, out)
}

// PutJSON performs a PUT with a JSON body and decodes the JSON response into
// out.
func (c *Client) PutJSON(ctx context.Context, endpoint string, in, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, in, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "request serialization failed")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.NewValidationError("endpoint", "invalid request", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewTransportError(endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	c.log.ComponentDebug(logging.ComponentClient, "http round trip",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
	)

	if err := mapStatus(resp, endpoint); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "response decoding failed")
	}
	return nil
}

// mapStatus converts non-2xx responses into typed errors. The body is read
// (bounded) so service-side detail survives into the error chain.
func mapStatus(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.NewNotFoundError("resource", endpoint)
	case http.StatusConflict:
		return errors.NewAlreadyExistsError("resource", endpoint)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewUnauthorizedError("", fmt.Sprintf("access %s", endpoint))
	default:
		return errors.NewRemoteRejectionError(
			endpoint,
			resp.Request.Method,
			fmt.Sprintf("status %d: %s", resp.StatusCode, bytes.TrimSpace(detail)),
		)
	}
}

// Download fetches a file into destDir and returns the written path. The
// filename comes from the Content-Disposition header when present, otherwise
// from the URL path.
func (c *Client) Download(ctx context.Context, endpoint, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errors.NewValidationError("endpoint", "invalid request", endpoint)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.NewTransportError(endpoint, "download failed", err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp, endpoint); err != nil {
		return "", err
	}

	name := attachmentName(resp, endpoint)
	dest := filepath.Join(destDir, name)
	file, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s failed", dest)
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "writing %s failed", dest)
	}
	c.log.ComponentDebug(logging.ComponentClient, "file downloaded",
		zap.String("path", dest),
		zap.Int64("bytes", written),
	)
	return dest, nil
}

// attachmentName extracts a safe local filename for a download.
func attachmentName(resp *http.Response, endpoint string) string {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := path.Base(params["filename"]); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	if parsed, err := url.Parse(endpoint); err == nil {
		if name := path.Base(parsed.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "download"
}
