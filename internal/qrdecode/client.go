// Package qrdecode extracts QR payloads from uploaded images via the public
// goqr.me read-qr-code endpoint.
package qrdecode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultEndpoint is the public decoding service.
const DefaultEndpoint = "https://api.qrserver.com/v1/read-qr-code/"

// ErrNoQRCode means the image was processed but contained no readable QR
// code. Callers surface this differently from a malformed attendance code.
var ErrNoQRCode = errors.New("qrdecode: no QR code found in image")

// Client calls the decoding endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// New creates a client; an empty endpoint selects the public service.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// response mirrors the service's shape: one entry per file, each with the
// symbols found in it.
type response []struct {
	Symbol []struct {
		Data  *string `json:"data"`
		Error *string `json:"error"`
	} `json:"symbol"`
}

// DecodeFile reads an image from disk and returns the decoded text.
func (c *Client) DecodeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return c.Decode(ctx, f, filepath.Base(path))
}

// Decode uploads an image as multipart form data and returns the decoded
// text of the first symbol.
func (c *Client) Decode(ctx context.Context, image io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("qrdecode: build form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("qrdecode: read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("qrdecode: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("qrdecode: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("qrdecode: request failed with status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("qrdecode: decode response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Symbol) == 0 {
		return "", ErrNoQRCode
	}
	sym := parsed[0].Symbol[0]
	if sym.Error != nil || sym.Data == nil {
		return "", ErrNoQRCode
	}
	return *sym.Data, nil
}
